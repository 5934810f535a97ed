package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type check struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	Expect   int    `json:"expect"`
	Critical bool   `json:"critical"`
}

type checkFile struct {
	Checks []check `json:"checks"`
}

type result struct {
	Check    check
	Status   int
	Duration time.Duration
	Err      error
}

func main() {
	var (
		base       string
		checksPath string
		token      string
		timeout    time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080", "API base URL")
	flag.StringVar(&checksPath, "checks", filepath.Join("scripts", "smoke", "checks.json"), "Path to JSON checks file")
	flag.StringVar(&token, "token", os.Getenv("SMOKE_TOKEN"), "Bearer token for authenticated checks")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	checks, err := loadChecks(checksPath)
	if err != nil {
		log.Fatalf("failed to load checks: %v", err)
	}

	client := &http.Client{Timeout: timeout}
	var failures int
	results := make([]result, 0, len(checks))
	for _, c := range checks {
		res := runCheck(client, base, token, c)
		if (res.Err != nil || res.Status != c.Expect) && c.Critical {
			failures++
		}
		results = append(results, res)
	}

	printReport(results)
	fmt.Printf("Critical failures: %d\n", failures)
	if failures > 0 {
		os.Exit(1)
	}
}

func loadChecks(path string) ([]check, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f checkFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if len(f.Checks) == 0 {
		return nil, fmt.Errorf("no checks defined in %s", path)
	}
	return f.Checks, nil
}

func runCheck(client *http.Client, base, token string, c check) result {
	res := result{Check: c}

	method := strings.ToUpper(strings.TrimSpace(c.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := c.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequest(method, strings.TrimRight(base, "/")+path, nil)
	if err != nil {
		res.Err = err
		return res
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := client.Do(req)
	res.Duration = time.Since(start)
	if err != nil {
		res.Err = err
		return res
	}
	defer resp.Body.Close()

	res.Status = resp.StatusCode
	return res
}

func printReport(results []result) {
	fmt.Println("Smoke Check Report")
	fmt.Println("==================")
	for _, res := range results {
		status := "OK"
		if res.Err != nil {
			status = "ERROR"
		} else if res.Status != res.Check.Expect {
			status = "FAIL"
		}
		fmt.Printf("[%s] %s %s\n", status, res.Check.Method, res.Check.Path)
		if res.Err != nil {
			fmt.Printf("  Error: %v\n", res.Err)
			continue
		}
		fmt.Printf("  Status: %d (want %d) in %s | Critical: %t\n", res.Status, res.Check.Expect, res.Duration, res.Check.Critical)
	}
}
