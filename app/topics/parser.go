package topics

import (
	"encoding/xml"
	"fmt"
	"os"
)

// Row holds one event's metadata, keyed by the requested field names.
// Missing fields are present with an empty value.
type Row map[string]string

// Parser extracts per-event metadata rows from a topics XML file. Each child
// node of the document root describes one event.
type Parser struct {
	path string
}

func NewParser(path string) *Parser {
	return &Parser{path: path}
}

// ParseAttributes reads the topics file and returns one Row per event node,
// populated attribute-by-attribute from the node's child elements named in
// fields. Fields absent from a node default to "".
func (p *Parser) ParseAttributes(fields []string) ([]Row, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read topics file: %w", err)
	}

	var doc topicsDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse topics XML: %w", err)
	}

	rows := make([]Row, 0, len(doc.Nodes))
	for _, node := range doc.Nodes {
		row := make(Row, len(fields))
		for _, field := range fields {
			row[field] = node.text(field)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

type topicsDoc struct {
	Nodes []topicNode `xml:",any"`
}

type topicNode struct {
	Elements []topicElement `xml:",any"`
}

type topicElement struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

func (n *topicNode) text(field string) string {
	for _, el := range n.Elements {
		if el.XMLName.Local == field {
			return el.Value
		}
	}
	return ""
}
