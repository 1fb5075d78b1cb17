package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Simple Prometheus-style metrics kept in memory.

var (
	mu             sync.RWMutex
	requestsTotal  = make(map[reqKey]int64)
	latencyMsSum   = make(map[latKey]int64)
	latencyMsCount = make(map[latKey]int64)
	llmRequests    = make(map[llmKey]int64)
	extractions    = make(map[extractKey]int64)
	fetches        = make(map[fetchKey]int64)
	fetchRedirects int64
	retentionRows  int64
)

type reqKey struct {
	Method string
	Path   string
	Status int
}

type latKey struct {
	Method string
	Path   string
}

type llmKey struct {
	Provider string
	Model    string
	Success  string
}

type extractKey struct {
	Mode    string
	Outcome string
}

type fetchKey struct {
	Engine  string
	Outcome string
}

// RecordRequest increments request counter and records latency.
func RecordRequest(method, path string, status int, latencyMs int64) {
	mu.Lock()
	defer mu.Unlock()

	rk := reqKey{Method: method, Path: path, Status: status}
	requestsTotal[rk]++

	lk := latKey{Method: method, Path: path}
	latencyMsSum[lk] += latencyMs
	latencyMsCount[lk]++
}

// RecordLLMRequest counts calls to an LLM provider.
func RecordLLMRequest(provider, model string, success bool) {
	mu.Lock()
	defer mu.Unlock()

	s := "false"
	if success {
		s = "true"
	}
	llmRequests[llmKey{Provider: provider, Model: model, Success: s}]++
}

// RecordExtraction counts pipeline runs by mode (image, text, url,
// translate) and outcome.
func RecordExtraction(mode, outcome string) {
	mu.Lock()
	defer mu.Unlock()
	extractions[extractKey{Mode: mode, Outcome: outcome}]++
}

// RecordFetch counts page fetches by engine and outcome.
func RecordFetch(engine, outcome string) {
	mu.Lock()
	defer mu.Unlock()
	fetches[fetchKey{Engine: engine, Outcome: outcome}]++
}

// RecordFetchRedirect counts followed redirect hops.
func RecordFetchRedirect() {
	mu.Lock()
	defer mu.Unlock()
	fetchRedirects++
}

// RecordRetentionExtractions counts extraction log rows removed by cleanup.
func RecordRetentionExtractions(n int64) {
	mu.Lock()
	defer mu.Unlock()
	retentionRows += n
}

// Export returns Prometheus-style metrics text.
func Export() string {
	mu.RLock()
	defer mu.RUnlock()

	var b strings.Builder

	b.WriteString("# HELP recipebox_http_requests_total Total HTTP requests\n")
	b.WriteString("# TYPE recipebox_http_requests_total counter\n")

	// Sort keys for stable output
	var reqKeys []reqKey
	for k := range requestsTotal {
		reqKeys = append(reqKeys, k)
	}
	sort.Slice(reqKeys, func(i, j int) bool {
		if reqKeys[i].Method != reqKeys[j].Method {
			return reqKeys[i].Method < reqKeys[j].Method
		}
		if reqKeys[i].Path != reqKeys[j].Path {
			return reqKeys[i].Path < reqKeys[j].Path
		}
		return reqKeys[i].Status < reqKeys[j].Status
	})
	for _, k := range reqKeys {
		fmt.Fprintf(&b, "recipebox_http_requests_total{method=\"%s\",path=\"%s\",status=\"%d\"} %d\n",
			k.Method, k.Path, k.Status, requestsTotal[k])
	}

	b.WriteString("# HELP recipebox_http_request_duration_ms_sum Total request duration in milliseconds\n")
	b.WriteString("# TYPE recipebox_http_request_duration_ms_sum counter\n")
	b.WriteString("# HELP recipebox_http_request_duration_ms_count Request count for latency metric\n")
	b.WriteString("# TYPE recipebox_http_request_duration_ms_count counter\n")

	var latKeys []latKey
	for k := range latencyMsSum {
		latKeys = append(latKeys, k)
	}
	sort.Slice(latKeys, func(i, j int) bool {
		if latKeys[i].Method != latKeys[j].Method {
			return latKeys[i].Method < latKeys[j].Method
		}
		return latKeys[i].Path < latKeys[j].Path
	})
	for _, k := range latKeys {
		fmt.Fprintf(&b, "recipebox_http_request_duration_ms_sum{method=\"%s\",path=\"%s\"} %d\n",
			k.Method, k.Path, latencyMsSum[k])
		fmt.Fprintf(&b, "recipebox_http_request_duration_ms_count{method=\"%s\",path=\"%s\"} %d\n",
			k.Method, k.Path, latencyMsCount[k])
	}

	b.WriteString("# HELP recipebox_llm_requests_total Total LLM requests\n")
	b.WriteString("# TYPE recipebox_llm_requests_total counter\n")

	var llmKeys []llmKey
	for k := range llmRequests {
		llmKeys = append(llmKeys, k)
	}
	sort.Slice(llmKeys, func(i, j int) bool {
		if llmKeys[i].Provider != llmKeys[j].Provider {
			return llmKeys[i].Provider < llmKeys[j].Provider
		}
		if llmKeys[i].Model != llmKeys[j].Model {
			return llmKeys[i].Model < llmKeys[j].Model
		}
		return llmKeys[i].Success < llmKeys[j].Success
	})
	for _, k := range llmKeys {
		fmt.Fprintf(&b, "recipebox_llm_requests_total{provider=\"%s\",model=\"%s\",success=\"%s\"} %d\n",
			k.Provider, k.Model, k.Success, llmRequests[k])
	}

	b.WriteString("# HELP recipebox_extractions_total Recipe extractions by mode and outcome\n")
	b.WriteString("# TYPE recipebox_extractions_total counter\n")

	var exKeys []extractKey
	for k := range extractions {
		exKeys = append(exKeys, k)
	}
	sort.Slice(exKeys, func(i, j int) bool {
		if exKeys[i].Mode != exKeys[j].Mode {
			return exKeys[i].Mode < exKeys[j].Mode
		}
		return exKeys[i].Outcome < exKeys[j].Outcome
	})
	for _, k := range exKeys {
		fmt.Fprintf(&b, "recipebox_extractions_total{mode=\"%s\",outcome=\"%s\"} %d\n",
			k.Mode, k.Outcome, extractions[k])
	}

	b.WriteString("# HELP recipebox_fetch_total Page fetches by engine and outcome\n")
	b.WriteString("# TYPE recipebox_fetch_total counter\n")

	var fetchKeys []fetchKey
	for k := range fetches {
		fetchKeys = append(fetchKeys, k)
	}
	sort.Slice(fetchKeys, func(i, j int) bool {
		if fetchKeys[i].Engine != fetchKeys[j].Engine {
			return fetchKeys[i].Engine < fetchKeys[j].Engine
		}
		return fetchKeys[i].Outcome < fetchKeys[j].Outcome
	})
	for _, k := range fetchKeys {
		fmt.Fprintf(&b, "recipebox_fetch_total{engine=\"%s\",outcome=\"%s\"} %d\n",
			k.Engine, k.Outcome, fetches[k])
	}

	b.WriteString("# HELP recipebox_fetch_redirects_total Redirect hops followed while fetching\n")
	b.WriteString("# TYPE recipebox_fetch_redirects_total counter\n")
	fmt.Fprintf(&b, "recipebox_fetch_redirects_total %d\n", fetchRedirects)

	b.WriteString("# HELP recipebox_retention_extractions_deleted_total Extraction log rows deleted by retention\n")
	b.WriteString("# TYPE recipebox_retention_extractions_deleted_total counter\n")
	fmt.Fprintf(&b, "recipebox_retention_extractions_deleted_total %d\n", retentionRows)

	return b.String()
}
