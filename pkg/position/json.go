package position

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// wirePosition is the serialized form. Only article is always present.
type wirePosition struct {
	Article             []int    `json:"article" yaml:"article"`
	Paragraph           []int    `json:"paragraph,omitempty" yaml:"paragraph,omitempty"`
	Item                []int    `json:"item,omitempty" yaml:"item,omitempty"`
	SubItem             *SubItem `json:"sub_item,omitempty" yaml:"sub_item,omitempty"`
	SupplProvisionTitle *string  `json:"suppl_provision_title,omitempty" yaml:"suppl_provision_title,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (p Position) MarshalJSON() ([]byte, error) {
	article := p.article
	if article == nil {
		article = []int{}
	}
	return json.Marshal(wirePosition{
		Article:             article,
		Paragraph:           p.paragraph,
		Item:                p.item,
		SubItem:             p.subItem,
		SupplProvisionTitle: p.supplTitle,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Position) UnmarshalJSON(data []byte) error {
	var wire wirePosition
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*p = wire.position()
	return nil
}

// MarshalYAML renders the same shape as the JSON form.
func (p Position) MarshalYAML() (interface{}, error) {
	return wirePosition{
		Article:             p.Article(),
		Paragraph:           p.paragraph,
		Item:                p.item,
		SubItem:             p.subItem,
		SupplProvisionTitle: p.supplTitle,
	}, nil
}

// UnmarshalYAML reads the form written by MarshalYAML.
func (p *Position) UnmarshalYAML(value *yaml.Node) error {
	var wire wirePosition
	if err := value.Decode(&wire); err != nil {
		return err
	}
	*p = wire.position()
	return nil
}

func (w wirePosition) position() Position {
	article := w.Article
	if len(article) == 0 {
		article = nil
	}
	return Position{
		article:    article,
		paragraph:  w.Paragraph,
		item:       w.Item,
		subItem:    w.SubItem,
		supplTitle: w.SupplProvisionTitle,
	}
}
