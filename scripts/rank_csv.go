// rank_csv.go: standalone script that ranks a data CSV against a criteria CSV.
//
// Usage:
//
//	go run scripts/rank_csv.go -data data.csv -criteria criteria.csv -api http://localhost:8700 [-v 0.5] [-out results.zip]
//	go run scripts/rank_csv.go -data data.csv -criteria criteria.csv -dry-run
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/MikeSquared-Agency/vikor/internal/ranker"
	"github.com/MikeSquared-Agency/vikor/internal/report"
	"github.com/MikeSquared-Agency/vikor/internal/vikor"
)

func main() {
	dataPath := flag.String("data", "data.csv", "path to the alternatives x criteria CSV")
	criteriaPath := flag.String("criteria", "criteria.csv", "path to the criteria CSV")
	apiURL := flag.String("api", "http://localhost:8700", "VIKOR API base URL")
	clientID := flag.String("client", "rank-csv", "X-Client-ID header value")
	v := flag.Float64("v", 0.5, "weight of the group utility strategy")
	out := flag.String("out", "", "also write the exported tables to this zip path")
	dryRun := flag.Bool("dry-run", false, "rank locally without calling the API")
	flag.Parse()

	data, err := os.ReadFile(*dataPath)
	if err != nil {
		log.Fatalf("read data: %v", err)
	}
	criteria, err := os.ReadFile(*criteriaPath)
	if err != nil {
		log.Fatalf("read criteria: %v", err)
	}

	if *dryRun {
		matrix, err := report.ParseData(bytes.NewReader(data))
		if err != nil {
			log.Fatalf("parse data: %v", err)
		}
		specs, err := report.ParseCriteria(bytes.NewReader(criteria))
		if err != nil {
			log.Fatalf("parse criteria: %v", err)
		}
		res, err := vikor.Compute(matrix, specs, *v)
		if err != nil {
			log.Fatalf("compute: %v", err)
		}
		printScores(res.Scores, vikor.Compromise(res).Alternatives)
		return
	}

	client := &http.Client{Timeout: 30 * time.Second}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	addFile(mw, "data", *dataPath, data)
	addFile(mw, "criteria", *criteriaPath, criteria)
	if err := mw.WriteField("v", strconv.FormatFloat(*v, 'g', -1, 64)); err != nil {
		log.Fatalf("write v: %v", err)
	}
	if err := mw.Close(); err != nil {
		log.Fatalf("close form: %v", err)
	}

	req, err := http.NewRequest("POST", *apiURL+"/api/v1/rank/upload", &body)
	if err != nil {
		log.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Client-ID", *clientID)

	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("upload: %v", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("upload: status %d: %s", resp.StatusCode, raw)
	}

	var run ranker.Run
	if err := json.Unmarshal(raw, &run); err != nil {
		log.Fatalf("decode run: %v", err)
	}
	log.Printf("run %s computed in %.2fms", run.ID, run.DurationMs)
	printScores(run.Scores, run.Compromise.Alternatives)

	if *out != "" {
		if err := export(client, *apiURL, *clientID, data, criteria, *v, *out); err != nil {
			log.Fatalf("export: %v", err)
		}
		log.Printf("wrote %s", *out)
	}
}

func addFile(mw *multipart.Writer, field, path string, content []byte) {
	fw, err := mw.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		log.Fatalf("add %s: %v", field, err)
	}
	if _, err := fw.Write(content); err != nil {
		log.Fatalf("add %s: %v", field, err)
	}
}

func export(client *http.Client, apiURL, clientID string, data, criteria []byte, v float64, path string) error {
	matrix, err := report.ParseData(bytes.NewReader(data))
	if err != nil {
		return err
	}
	specs, err := report.ParseCriteria(bytes.NewReader(criteria))
	if err != nil {
		return err
	}
	p := ranker.NewProblem(matrix, specs)
	p.V = &v

	body, _ := json.Marshal(p)
	req, err := http.NewRequest("POST", apiURL+"/api/v1/rank/export", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Client-ID", clientID)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d: %s", resp.StatusCode, msg)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printScores(scores []vikor.Score, compromise []string) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tALTERNATIVE\tS\tR\tQ")
	for _, s := range scores {
		fmt.Fprintf(tw, "%d\t%s\t%.4f\t%.4f\t%.4f\n", s.Rank, s.Alternative, s.S, s.R, s.Q)
	}
	tw.Flush()
	fmt.Printf("compromise solution: %v\n", compromise)
}
