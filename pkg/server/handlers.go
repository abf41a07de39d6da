package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/matzehuels/robdd/pkg/bitvec"
	"github.com/matzehuels/robdd/pkg/buildinfo"
	"github.com/matzehuels/robdd/pkg/errors"
	"github.com/matzehuels/robdd/pkg/experiment"
	"github.com/matzehuels/robdd/pkg/pipeline"
)

var contentTypes = map[string]string{
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
}

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

// diagramResponse is the JSON envelope of /v1/diagrams and /v1/combine.
type diagramResponse struct {
	Hash      string          `json:"hash"`
	Vars      int             `json:"vars"`
	NodeCount int             `json:"node_count"`
	Op        string          `json:"op,omitempty"`
	Cached    bool            `json:"cached"`
	Diagram   json.RawMessage `json:"diagram"`
}

type experimentResponse struct {
	*experiment.Result
	Cached bool `json:"cached"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handleDiagram(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	width, err := widthParam(q.Get("width"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	table, err := bitvec.ParseTable(q.Get("table"), width)
	if err != nil {
		s.writeError(w, err)
		return
	}
	reduce, err := boolParam(q.Get("reduce"), "reduce", true)
	if err != nil {
		s.writeError(w, err)
		return
	}
	format := formatParam(q.Get("format"))

	res, err := s.runner.Build(r.Context(), table, pipeline.Options{
		NoReduce: !reduce,
		Formats:  []string{format},
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeDiagram(w, res, format, "")
}

func (s *Server) handleCombine(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	width, err := widthParam(q.Get("width"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	t1, err := bitvec.ParseTable(q.Get("a"), width)
	if err != nil {
		s.writeError(w, err)
		return
	}
	t2, err := bitvec.ParseTable(q.Get("b"), width)
	if err != nil {
		s.writeError(w, err)
		return
	}
	format := formatParam(q.Get("format"))

	opts := pipeline.Options{Op: q.Get("op"), Formats: []string{format}}
	res, err := s.runner.Combine(r.Context(), t1, t2, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	op, _ := opts.Operator()
	s.writeDiagram(w, res, format, op.String())
}

func (s *Server) handleExperiment(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	vars, err := requiredInt(q.Get("vars"), "vars")
	if err != nil {
		s.writeError(w, err)
		return
	}
	samples, err := optionalInt(q.Get("samples"), "samples", 0)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if samples > MaxExperimentSamples {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput,
			"samples %d exceeds the server limit of %d", samples, MaxExperimentSamples))
		return
	}
	var seed uint64
	if v := q.Get("seed"); v != "" {
		seed, err = strconv.ParseUint(v, 10, 64)
		if err != nil {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid seed %q", v))
			return
		}
	}

	res, hit, err := s.runner.Experiment(r.Context(), experiment.Options{
		Vars:    vars,
		Samples: samples,
		Seed:    seed,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, experimentResponse{Result: res, Cached: hit})
}

func (s *Server) writeDiagram(w http.ResponseWriter, res *pipeline.Result, format, op string) {
	data := res.Artifacts[format]
	if format != pipeline.FormatJSON {
		w.Header().Set("Content-Type", contentTypes[format])
		w.Header().Set("X-Diagram-Hash", res.Hash)
		w.Header().Set("X-Node-Count", strconv.Itoa(res.Stats.NodeCount))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}
	writeJSON(w, http.StatusOK, diagramResponse{
		Hash:      res.Hash,
		Vars:      res.Stats.Vars,
		NodeCount: res.Stats.NodeCount,
		Op:        op,
		Cached:    res.CacheInfo.DiagramHit,
		Diagram:   json.RawMessage(data),
	})
}

// writeError maps err to a status code and writes the JSON error body.
// Internal errors are logged and their details withheld.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	code := string(errors.GetCode(err))
	msg := errors.UserMessage(err)
	if code == "" {
		code = string(errors.ErrCodeInternal)
	}
	if status >= http.StatusInternalServerError {
		s.cfg.Logger.Error("request failed", "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: msg}})
}

func statusOf(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidOperator,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case errors.ErrCodeOperatorArity, errors.ErrCodeIncompatibleDiagrams:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypes[pipeline.FormatJSON])
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func widthParam(v string) (int, error) {
	width, err := requiredInt(v, "width")
	if err != nil {
		return 0, err
	}
	if width > MaxDiagramWidth {
		return 0, errors.New(errors.ErrCodeInvalidInput,
			"width %d exceeds the server limit of %d", width, MaxDiagramWidth)
	}
	return width, nil
}

func requiredInt(v, name string) (int, error) {
	if v == "" {
		return 0, errors.New(errors.ErrCodeInvalidInput, "missing parameter %q", name)
	}
	return optionalInt(v, name, 0)
}

func optionalInt(v, name string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid %s %q", name, v)
	}
	return n, nil
}

func boolParam(v, name string, def bool) (bool, error) {
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.New(errors.ErrCodeInvalidInput, "invalid %s %q", name, v)
	}
	return b, nil
}

func formatParam(v string) string {
	if v == "" {
		return pipeline.FormatJSON
	}
	return v
}
