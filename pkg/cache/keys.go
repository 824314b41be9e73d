package cache

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/vmihailenco/msgpack/v5"
)

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey identifies computed node positions for a graph document.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
	// FrameKey identifies a rendered frame of a graph document.
	FrameKey(graphHash string, opts FrameKeyOpts) string
}

// LayoutKeyOpts are the layout inputs besides the graph itself.
type LayoutKeyOpts struct {
	Engine string `msgpack:"engine"`
}

// FrameKeyOpts are the render inputs besides the graph document. Anything
// that changes the drawn SVG belongs here.
type FrameKeyOpts struct {
	Format     string `msgpack:"format"`
	Width      int    `msgpack:"width"`
	Height     int    `msgpack:"height"`
	StyleSheet string `msgpack:"stylesheet,omitempty"` // Hash of the stylesheet document.
	Engine     string `msgpack:"engine,omitempty"`
	Padding    string `msgpack:"padding,omitempty"`

	Title      string `msgpack:"title,omitempty"`
	ElementIDs bool   `msgpack:"ids,omitempty"`
	NoShadows  bool   `msgpack:"no_shadows,omitempty"`

	// The user view; a zero ViewPercent means auto-fit.
	ViewPercent  float64   `msgpack:"view_percent,omitempty"`
	ViewCenter   []float64 `msgpack:"view_center,omitempty"`
	ViewRotation float64   `msgpack:"view_rotation,omitempty"`
}

// Hash returns the hex SHA-256 of data. Graph documents, DOT text and
// stylesheets are identified by it.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// DefaultKeyer builds keys of the form "<kind>:<input hash>:<options hash>",
// hashing the msgpack encoding of the options.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the unscoped keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return digest("layout", graphHash, opts)
}

func (DefaultKeyer) FrameKey(graphHash string, opts FrameKeyOpts) string {
	return digest("frame", graphHash, opts)
}

func digest(kind, inputHash string, opts any) string {
	enc, _ := msgpack.Marshal(opts)
	return kind + ":" + inputHash + ":" + Hash(enc)
}
