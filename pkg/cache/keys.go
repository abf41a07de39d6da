package cache

// Key prefixes for the different entry kinds.
const (
	prefixDiagram    = "diagram"
	prefixCombine    = "combine"
	prefixArtifact   = "artifact"
	prefixExperiment = "experiment"
)

// Keyer derives cache keys from pipeline inputs.
type Keyer interface {
	// DiagramKey identifies the canonical diagram of a truth table.
	DiagramKey(tableHash string, opts DiagramKeyOpts) string
	// CombineKey identifies the combination of two truth tables.
	CombineKey(leftHash, rightHash string, opts CombineKeyOpts) string
	// ArtifactKey identifies a rendered or serialized diagram.
	ArtifactKey(diagramHash string, opts ArtifactKeyOpts) string
	// ExperimentKey identifies the result of a size experiment.
	ExperimentKey(opts ExperimentKeyOpts) string
}

// DiagramKeyOpts are the options that change a built diagram.
type DiagramKeyOpts struct {
	Width  int  `json:"width"`
	Reduce bool `json:"reduce"`
}

// CombineKeyOpts are the options that change a combined diagram.
type CombineKeyOpts struct {
	Width int    `json:"width"`
	Op    string `json:"op"`
}

// ArtifactKeyOpts are the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed,omitempty"`
}

// ExperimentKeyOpts are the options that change an experiment result.
type ExperimentKeyOpts struct {
	Vars    int    `json:"vars"`
	Samples int    `json:"samples"`
	Seed    uint64 `json:"seed"`
}

// DefaultKeyer hashes every option into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) DiagramKey(tableHash string, opts DiagramKeyOpts) string {
	return hashKey(prefixDiagram, tableHash, opts)
}

func (DefaultKeyer) CombineKey(leftHash, rightHash string, opts CombineKeyOpts) string {
	return hashKey(prefixCombine, leftHash, rightHash, opts)
}

func (DefaultKeyer) ArtifactKey(diagramHash string, opts ArtifactKeyOpts) string {
	return hashKey(prefixArtifact, diagramHash, opts)
}

func (DefaultKeyer) ExperimentKey(opts ExperimentKeyOpts) string {
	return hashKey(prefixExperiment, opts)
}

var _ Keyer = DefaultKeyer{}
