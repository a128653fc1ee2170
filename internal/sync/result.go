package sync

import "fmt"

// Result aggregates one phase of one entity type.
type Result struct {
	Entity     string   `json:"entity"`
	Total      int      `json:"total"`
	Uploaded   int      `json:"uploaded,omitempty"`
	Downloaded int      `json:"downloaded,omitempty"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors,omitempty"`
}

// OK reports whether the phase completed without a single record error.
func (r Result) OK() bool { return len(r.Errors) == 0 }

func (r *Result) addError(id string, err error) {
	r.Failed++
	r.Errors = append(r.Errors, fmt.Sprintf("%s %s: %v", r.Entity, id, err))
}

// Report is the structured outcome of an UploadAll, DownloadAll or FullSync.
type Report struct {
	Success bool     `json:"success"`
	Results []Result `json:"results"`
	Errors  []string `json:"errors,omitempty"`
}

func (r *Report) add(res Result) {
	r.Results = append(r.Results, res)
	r.Errors = append(r.Errors, res.Errors...)
	if !res.OK() {
		r.Success = false
	}
}

// TotalUploaded sums uploads across entity types.
func (r Report) TotalUploaded() int {
	n := 0
	for _, res := range r.Results {
		n += res.Uploaded
	}
	return n
}

// TotalDownloaded sums downloads across entity types.
func (r Report) TotalDownloaded() int {
	n := 0
	for _, res := range r.Results {
		n += res.Downloaded
	}
	return n
}
