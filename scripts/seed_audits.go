// seed_audits.go imports historical audits from a CSV sheet into a running service.
//
// Expected header: date,area,auditor,responsable,1,2,...,N where the numeric
// columns are question ids and cells hold SI, NO, PARCIAL or NA. Empty cells
// are left unanswered.
//
// Usage:
//
//	go run scripts/seed_audits.go -csv audits.csv -api http://localhost:8600 -user import
package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
)

type answer struct {
	QuestionID int    `json:"questionId"`
	Rating     string `json:"rating"`
}

type auditRequest struct {
	Area              string   `json:"area"`
	Auditor           string   `json:"auditor"`
	Responsable       string   `json:"responsable,omitempty"`
	Date              string   `json:"date,omitempty"`
	Answers           []answer `json:"answers"`
	ConfirmIncomplete bool     `json:"confirm_incomplete"`
}

var fixedColumns = map[string]bool{"date": true, "area": true, "auditor": true, "responsable": true}

func main() {
	csvPath := flag.String("csv", "audits.csv", "path to CSV file")
	apiURL := flag.String("api", "http://localhost:8600", "Audit5S API base URL")
	user := flag.String("user", "import", "X-User header value")
	dryRun := flag.Bool("dry-run", false, "print audits without posting")
	flag.Parse()

	f, err := os.Open(*csvPath)
	if err != nil {
		log.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	audits, err := parseAudits(f)
	if err != nil {
		log.Fatalf("parse csv: %v", err)
	}
	log.Printf("parsed %d audits from %s", len(audits), *csvPath)

	if *dryRun {
		for i, a := range audits {
			fmt.Printf("[%d] %s %s by %s (%d answers)\n", i+1, a.Date, a.Area, a.Auditor, len(a.Answers))
		}
		return
	}

	client := &http.Client{}
	created, skipped := 0, 0
	for _, a := range audits {
		body, _ := json.Marshal(a)
		req, err := http.NewRequest("POST", *apiURL+"/api/v1/audits", bytes.NewReader(body))
		if err != nil {
			log.Printf("skip %s %s: %v", a.Date, a.Area, err)
			skipped++
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User", *user)

		resp, err := client.Do(req)
		if err != nil {
			log.Printf("skip %s %s: %v", a.Date, a.Area, err)
			skipped++
			continue
		}
		resp.Body.Close()

		if resp.StatusCode == http.StatusCreated {
			created++
		} else {
			log.Printf("skip %s %s: status %d", a.Date, a.Area, resp.StatusCode)
			skipped++
		}
	}

	log.Printf("done: %d created, %d skipped", created, skipped)
}

func parseAudits(r io.Reader) ([]auditRequest, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int)
	questions := make(map[int]int) // column -> question id
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		if fixedColumns[h] {
			cols[h] = i
			continue
		}
		id, err := strconv.Atoi(strings.TrimPrefix(h, "q"))
		if err != nil {
			return nil, fmt.Errorf("column %q is neither a field nor a question id", header[i])
		}
		questions[i] = id
	}
	if _, ok := cols["auditor"]; !ok {
		return nil, fmt.Errorf("missing auditor column")
	}

	var out []auditRequest
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		a := auditRequest{ConfirmIncomplete: true}
		get := func(name string) string {
			if i, ok := cols[name]; ok && i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}
		a.Date = get("date")
		a.Area = strings.ToUpper(get("area"))
		a.Auditor = get("auditor")
		a.Responsable = get("responsable")
		for i, cell := range rec {
			id, ok := questions[i]
			rating := strings.ToUpper(strings.TrimSpace(cell))
			if !ok || rating == "" {
				continue
			}
			a.Answers = append(a.Answers, answer{QuestionID: id, Rating: rating})
		}
		out = append(out, a)
	}
	return out, nil
}
