package store

// DefaultQuestions is the stock 5S checklist. Saved configs get any of these
// whose id is missing merged back in on load.
var DefaultQuestions = []Question{
	{ID: 1, Text: "¿Se han retirado del área los materiales, herramientas y equipos innecesarios?"},
	{ID: 2, Text: "¿Los elementos en desuso están identificados con tarjeta roja?"},
	{ID: 3, Text: "¿Cada herramienta y material tiene un lugar asignado e identificado?"},
	{ID: 4, Text: "¿Los pasillos y zonas de trabajo están demarcados y libres de obstáculos?"},
	{ID: 5, Text: "¿El piso, las máquinas y los puestos de trabajo están limpios?"},
	{ID: 6, Text: "¿Se eliminaron las fuentes de suciedad, fugas y derrames?"},
	{ID: 7, Text: "¿Existen estándares visuales de orden y limpieza publicados en el área?"},
	{ID: 8, Text: "¿Los controles visuales (etiquetas, señales, colores) están actualizados?"},
	{ID: 9, Text: "¿El personal cumple las rutinas 5S sin necesidad de supervisión?"},
	{ID: 10, Text: "¿Se realizaron las acciones correctivas de la auditoría anterior?"},
}

var DefaultAreas = []string{
	"ALMACÉN",
	"PRODUCCIÓN",
	"MANTENIMIENTO",
	"CALIDAD",
	"OFICINAS",
}

var DefaultResponsables = []Responsable{
	{Name: "JEFE DE ALMACÉN", Area: "ALMACÉN"},
	{Name: "JEFE DE PRODUCCIÓN", Area: "PRODUCCIÓN"},
	{Name: "JEFE DE MANTENIMIENTO", Area: "MANTENIMIENTO"},
	{Name: "JEFE DE CALIDAD", Area: "CALIDAD"},
	{Name: "GERENTE ADMINISTRATIVO", Area: "OFICINAS"},
}

func DefaultConfig() AppConfig {
	return AppConfig{
		Questions:    DefaultQuestions,
		Areas:        DefaultAreas,
		Responsables: DefaultResponsables,
	}.Clone()
}

// MergeDefaultQuestions appends every default question whose id is absent
// from cfg. Existing questions keep their text and order.
func MergeDefaultQuestions(cfg AppConfig) (AppConfig, int) {
	existing := make(map[int]bool, len(cfg.Questions))
	for _, q := range cfg.Questions {
		existing[q.ID] = true
	}
	added := 0
	for _, q := range DefaultQuestions {
		if !existing[q.ID] {
			cfg.Questions = append(cfg.Questions, q)
			added++
		}
	}
	return cfg, added
}
