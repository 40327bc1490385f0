package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"sort"
	"sync"
	"time"
)

// InitiateRequest mirrors the initiate endpoint payload
type InitiateRequest struct {
	Amount         string `json:"amount"`
	PaymentMethod  string `json:"paymentMethod"`
	TransactionRef string `json:"transactionRef,omitempty"`
	ProductType    string `json:"productType,omitempty"`
	IsWalletTopUp  bool   `json:"isWalletTopUp,omitempty"`
}

// RequestResult contains metrics for a single request
type RequestResult struct {
	Success      bool
	ResponseTime time.Duration
	StatusCode   int
	Error        error
}

// LoadStats contains aggregated run statistics
type LoadStats struct {
	TotalRequests      int
	SuccessfulRequests int
	FailedRequests     int
	TotalTime          time.Duration
	MinResponseTime    time.Duration
	MaxResponseTime    time.Duration
	TotalResponseTime  time.Duration
	ResponseTimes      []time.Duration
	ErrorCounts        map[string]int
	ScenarioStats      map[string]int
	Lock               sync.Mutex
}

// PaymentScenario defines one request shape the driver cycles through
type PaymentScenario struct {
	Name        string
	Method      string
	Amount      string
	ProductType string
	WalletTopUp bool
}

func main() {
	concurrency := flag.Int("c", 5, "Number of concurrent goroutines")
	totalRequests := flag.Int("n", 100, "Total number of requests to make")
	baseURL := flag.String("url", "http://localhost:8080", "Base URL for the API")
	token := flag.String("token", "", "Bearer token for the authenticated endpoints")
	delayMs := flag.Int("delay", 100, "Delay between requests in milliseconds")
	flag.Parse()

	if *token == "" {
		fmt.Println("A bearer token is required (-token); initiate is an authenticated endpoint")
		return
	}

	// Non-card scenarios only: the load driver never carries card data
	scenarios := []PaymentScenario{
		{"Transfer Small", "TRANSFER", "10.00", "gas", false},
		{"Transfer Medium", "TRANSFER", "55.50", "gas", false},
		{"Virtual Account", "VIRTUAL_ACCOUNT", "120.00", "diesel", false},
		{"Wallet Spend", "WALLET", "15.00", "gas", false},
		{"Wallet TopUp", "TRANSFER", "200.00", "", true},
	}

	fmt.Printf("Load testing %s/api/payments/initiate\n", *baseURL)
	fmt.Printf("Scenarios: %d, concurrency: %d, total requests: %d, delay: %d ms\n",
		len(scenarios), *concurrency, *totalRequests, *delayMs)

	stats := &LoadStats{
		TotalRequests:   *totalRequests,
		MinResponseTime: time.Hour,
		ErrorCounts:     make(map[string]int),
		ResponseTimes:   make([]time.Duration, 0, *totalRequests),
		ScenarioStats:   make(map[string]int),
	}
	for _, s := range scenarios {
		stats.ScenarioStats[s.Name] = 0
	}

	results := make(chan RequestResult, *totalRequests)
	jobs := make(chan int, *totalRequests)

	var wg sync.WaitGroup
	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			worker(workerID, *baseURL, *token, *delayMs, scenarios, jobs, results, stats)
		}(i)
	}

	go func() {
		for i := 0; i < *totalRequests; i++ {
			jobs <- i
		}
		close(jobs)
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for result := range results {
			stats.Lock.Lock()
			if result.Success {
				stats.SuccessfulRequests++
			} else {
				stats.FailedRequests++
				errMsg := "unknown"
				if result.Error != nil {
					errMsg = result.Error.Error()
				}
				stats.ErrorCounts[errMsg]++
			}

			stats.ResponseTimes = append(stats.ResponseTimes, result.ResponseTime)
			stats.TotalResponseTime += result.ResponseTime
			if result.ResponseTime < stats.MinResponseTime {
				stats.MinResponseTime = result.ResponseTime
			}
			if result.ResponseTime > stats.MaxResponseTime {
				stats.MaxResponseTime = result.ResponseTime
			}
			stats.Lock.Unlock()
		}
	}()

	startTime := time.Now()

	ticker := time.NewTicker(1 * time.Second)
	go func() {
		for range ticker.C {
			stats.Lock.Lock()
			completed := stats.SuccessfulRequests + stats.FailedRequests
			if completed > 0 {
				fmt.Printf("Progress: %d/%d requests completed (%.1f%%)\n",
					completed, stats.TotalRequests, float64(completed)/float64(stats.TotalRequests)*100)
			}
			stats.Lock.Unlock()
		}
	}()

	wg.Wait()
	close(results)
	<-done
	ticker.Stop()

	stats.TotalTime = time.Since(startTime)
	printResults(stats)
}

func worker(id int, baseURL, token string, delayMs int,
	scenarios []PaymentScenario, jobs <-chan int, results chan<- RequestResult, stats *LoadStats) {

	client := &http.Client{
		Timeout: 10 * time.Second,
	}

	for jobID := range jobs {
		if delayMs > 0 {
			time.Sleep(time.Duration(delayMs) * time.Millisecond)
		}

		scenario := scenarios[rand.Intn(len(scenarios))]

		stats.Lock.Lock()
		stats.ScenarioStats[scenario.Name]++
		stats.Lock.Unlock()

		// Unique ref per request so idempotency never collapses the load
		payload := InitiateRequest{
			Amount:         scenario.Amount,
			PaymentMethod:  scenario.Method,
			TransactionRef: fmt.Sprintf("load-%d-%d-%d", id, jobID, rand.Intn(1000000)),
			ProductType:    scenario.ProductType,
			IsWalletTopUp:  scenario.WalletTopUp,
		}

		jsonData, err := json.Marshal(payload)
		if err != nil {
			results <- RequestResult{Success: false, Error: err}
			continue
		}

		req, err := http.NewRequest("POST", baseURL+"/api/payments/initiate", bytes.NewBuffer(jsonData))
		if err != nil {
			results <- RequestResult{Success: false, Error: err}
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)

		startTime := time.Now()
		resp, err := client.Do(req)
		responseTime := time.Since(startTime)

		result := RequestResult{ResponseTime: responseTime}
		if err != nil {
			result.Success = false
			result.Error = err
		} else {
			result.StatusCode = resp.StatusCode
			result.Success = resp.StatusCode >= 200 && resp.StatusCode < 300
			if !result.Success {
				result.Error = fmt.Errorf("HTTP status code %d", resp.StatusCode)
			}
			resp.Body.Close()
		}

		results <- result
	}
}

func printResults(stats *LoadStats) {
	tps := float64(stats.SuccessfulRequests) / stats.TotalTime.Seconds()

	var avgResponseTime time.Duration
	if len(stats.ResponseTimes) > 0 {
		avgResponseTime = stats.TotalResponseTime / time.Duration(len(stats.ResponseTimes))
	}

	var p50, p90, p95, p99 time.Duration
	if len(stats.ResponseTimes) > 0 {
		sortedTimes := make([]time.Duration, len(stats.ResponseTimes))
		copy(sortedTimes, stats.ResponseTimes)
		sort.Slice(sortedTimes, func(i, j int) bool { return sortedTimes[i] < sortedTimes[j] })

		p50 = sortedTimes[len(sortedTimes)*50/100]
		p90 = sortedTimes[len(sortedTimes)*90/100]
		p95 = sortedTimes[len(sortedTimes)*95/100]
		p99 = sortedTimes[len(sortedTimes)*99/100]
	}

	fmt.Println("\n===== Results =====")
	fmt.Printf("Total requests:      %d\n", stats.TotalRequests)
	fmt.Printf("Successful:          %d\n", stats.SuccessfulRequests)
	fmt.Printf("Failed:              %d\n", stats.FailedRequests)
	fmt.Printf("Total time:          %v\n", stats.TotalTime)
	fmt.Printf("Successful TPS:      %.2f\n", tps)
	fmt.Printf("Avg response time:   %v\n", avgResponseTime)
	fmt.Printf("Min response time:   %v\n", stats.MinResponseTime)
	fmt.Printf("Max response time:   %v\n", stats.MaxResponseTime)
	fmt.Printf("p50/p90/p95/p99:     %v / %v / %v / %v\n", p50, p90, p95, p99)

	fmt.Println("\nRequests per scenario:")
	for name, count := range stats.ScenarioStats {
		fmt.Printf("  %-18s %d\n", name, count)
	}

	if len(stats.ErrorCounts) > 0 {
		fmt.Println("\nErrors:")
		for msg, count := range stats.ErrorCounts {
			fmt.Printf("  %dx %s\n", count, msg)
		}
	}
}
