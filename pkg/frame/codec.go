package frame

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/matzehuels/ember/pkg/errors"
	"github.com/matzehuels/ember/pkg/render"
)

// Format is a frame encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatBSON Format = "bson"
)

// FormatOf infers the format from a file extension, defaulting to JSON.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".bson") {
		return FormatBSON
	}
	return FormatJSON
}

// record is the BSON layout of a Frame. The ID is stored in its string form
// so recordings stay readable with generic BSON tooling.
type record struct {
	ID     string        `bson:"_id"`
	Scene  string        `bson:"scene,omitempty"`
	Seq    int64         `bson:"seq"`
	Width  int           `bson:"width"`
	Height int           `bson:"height"`
	Items  []render.Item `bson:"items"`
	Faults []Fault       `bson:"faults,omitempty"`
}

// Encode serializes f.
func Encode(f *Frame, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(f, "", "  ")
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode frame")
		}
		return append(data, '\n'), nil
	case FormatBSON:
		data, err := bson.Marshal(record{
			ID:     f.ID.String(),
			Scene:  f.Scene,
			Seq:    int64(f.Seq),
			Width:  f.Width,
			Height: f.Height,
			Items:  f.Items,
			Faults: f.Faults,
		})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode frame")
		}
		return data, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown frame format %q", format)
}

// Decode parses a frame serialized by Encode.
func Decode(data []byte, format Format) (*Frame, error) {
	switch format {
	case FormatJSON:
		var f Frame
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode frame")
		}
		return &f, nil
	case FormatBSON:
		var r record
		if err := bson.Unmarshal(data, &r); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode frame")
		}
		id, err := uuid.Parse(r.ID)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode frame id")
		}
		return &Frame{
			ID:     id,
			Scene:  r.Scene,
			Seq:    uint64(r.Seq),
			Width:  r.Width,
			Height: r.Height,
			Items:  r.Items,
			Faults: r.Faults,
		}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown frame format %q", format)
}

// WriteFile encodes f in the format implied by path's extension.
func WriteFile(path string, f *Frame) error {
	data, err := Encode(f, FormatOf(path))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write frame %s", path)
	}
	return nil
}

// ReadFile decodes a frame file written by WriteFile.
func ReadFile(path string) (*Frame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read frame %s", path)
	}
	return Decode(data, FormatOf(path))
}
