package cache

import "fmt"

// Keyer builds cache keys for pipeline stages.
type Keyer interface {
	// FrameKey identifies a resolved frame of a scene.
	FrameKey(sceneHash string, opts FrameKeyOpts) string

	// ArtifactKey identifies an artifact rendered from a frame.
	ArtifactKey(frameHash string, opts ArtifactKeyOpts) string
}

// FrameKeyOpts are the inputs besides the scene that change a frame.
type FrameKeyOpts struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Theme  string `json:"theme"`
	Ticks  int    `json:"ticks"`
}

// ArtifactKeyOpts are the inputs besides the frame that change an artifact.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Cols     int    `json:"cols,omitempty"`
	Rows     int    `json:"rows,omitempty"`
	Detailed bool   `json:"detailed,omitempty"`
}

// DefaultKeyer hashes key options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// FrameKey implements Keyer.
func (DefaultKeyer) FrameKey(sceneHash string, opts FrameKeyOpts) string {
	return hashKey("frame", sceneHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(frameHash string, opts ArtifactKeyOpts) string {
	return hashKey(fmt.Sprintf("artifact:%s", opts.Format), frameHash, opts)
}
