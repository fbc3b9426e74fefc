package gid

import (
	"encoding/json"
	"fmt"
	"io"
)

// Split is one decoded gid as gidsplit/giddump report it.
type Split struct {
	GID     string `json:"gid"`
	Date    string `json:"date"`
	PID     byte   `json:"pid"`
	User    byte   `json:"user"`
	Random  uint32 `json:"random"`
	Seq     uint16 `json:"seq"`
	Comment string `json:"comment,omitempty"`
}

// DecomposeSplit decomposes gid and renders its Fields into the report
// shape gidsplit/giddump use, in one call.
func DecomposeSplit(gidStr string) (Split, error) {
	f, err := Decompose(gidStr)
	if err != nil {
		return Split{}, err
	}
	return Split{
		GID:    gidStr,
		Date:   f.Time.Format("2006-01-02T15:04:05Z"),
		PID:    f.PIDByte,
		User:   f.UserByte,
		Random: f.Random,
		Seq:    f.Seq,
	}, nil
}

// GidSplitFormat selects gidsplit's output rendering.
type GidSplitFormat int

const (
	// Text renders one human-readable line per gid.
	Text GidSplitFormat = iota
	// JSON renders {"gids":[...]}.
	JSON
)

// WriteSplits renders splits to w in the requested format, the shape the
// CLI's --gidsplit and --giddump flags both build on.
func WriteSplits(w io.Writer, splits []Split, format GidSplitFormat) error {
	switch format {
	case JSON:
		enc := json.NewEncoder(w)
		return enc.Encode(struct {
			GIDs []Split `json:"gids"`
		}{splits})
	default:
		for _, s := range splits {
			if s.Comment != "" {
				fmt.Fprintf(w, "%s: date=%s, user=%d, pid=%d, random=%d, seq=%d # %s\n",
					s.GID, s.Date, s.User, s.PID, s.Random, s.Seq, s.Comment)
			} else {
				fmt.Fprintf(w, "%s: date=%s, user=%d, pid=%d, random=%d, seq=%d\n",
					s.GID, s.Date, s.User, s.PID, s.Random, s.Seq)
			}
		}
		return nil
	}
}
