package model

import "strings"

// processedLogCap bounds the processed-message log; the oldest identifiers
// are dropped once the cap is reached. IMAP re-polls only ever resurface
// recent messages, so a bounded window is enough for deduplication.
const processedLogCap = 500

// Document is the whole durable document: the ordered list of monitored
// currencies plus the processed-message log. It is read whole at the start
// of a run and written whole, only on change, at the end.
type Document struct {
	Currencies []*Currency `yaml:"currencies"`
	Processed  []string    `yaml:"processed_messages,omitempty"`
}

// Find returns the currency addressed by code, or nil. Codes compare
// case-insensitively.
func (d *Document) Find(code string) *Currency {
	for _, c := range d.Currencies {
		if strings.EqualFold(c.Code, code) {
			return c
		}
	}
	return nil
}

// Ensure returns the currency addressed by code, appending a new entry with
// the code as placeholder display name when none exists yet.
func (d *Document) Ensure(code string) *Currency {
	if c := d.Find(code); c != nil {
		return c
	}
	normalized := strings.ToUpper(code)
	c := &Currency{Name: normalized, Code: normalized}
	d.Currencies = append(d.Currencies, c)
	return c
}

func (d *Document) IsProcessed(id string) bool {
	for _, p := range d.Processed {
		if p == id {
			return true
		}
	}
	return false
}

func (d *Document) MarkProcessed(id string) {
	if id == "" || d.IsProcessed(id) {
		return
	}
	d.Processed = append(d.Processed, id)
	if len(d.Processed) > processedLogCap {
		d.Processed = d.Processed[len(d.Processed)-processedLogCap:]
	}
}

// Clone returns a deep copy; mutating the copy never touches the original.
func (d *Document) Clone() *Document {
	clone := &Document{}
	if d.Currencies != nil {
		clone.Currencies = make([]*Currency, len(d.Currencies))
		for i, c := range d.Currencies {
			clone.Currencies[i] = c.Clone()
		}
	}
	if d.Processed != nil {
		clone.Processed = append([]string(nil), d.Processed...)
	}
	return clone
}
