package lawxml

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// sentenceContainers hold the flowing text of a provision. Each one becomes a
// single text fragment so a definition split over several <Sentence>
// elements is still matched as a whole.
var sentenceContainers = map[string]bool{
	"ParagraphSentence":      true,
	"ItemSentence":           true,
	"AmendProvisionSentence": true,
	"ListSentence":           true,
}

func init() {
	for depth := 1; depth <= 10; depth++ {
		sentenceContainers[fmt.Sprintf("Subitem%dSentence", depth)] = true
	}
	for depth := 1; depth <= 3; depth++ {
		sentenceContainers[fmt.Sprintf("Sublist%dSentence", depth)] = true
	}
}

// Decoder streams fragments out of one law XML document.
type Decoder struct {
	decoder *xml.Decoder

	lawNumber string
	pending   []Event
	ready     []Fragment

	inLawNum     bool
	lawNumText   strings.Builder
	sentence     int
	sentenceText strings.Builder
	table        int
	tableText    strings.Builder
	ruby         int
	newProvision int

	inSupplLabel   bool
	supplLabelText strings.Builder
	supplEvent     int
}

// NewDecoder reads law XML from reader.
func NewDecoder(reader io.Reader) *Decoder {
	decoder := xml.NewDecoder(reader)
	decoder.Strict = false
	return &Decoder{decoder: decoder, supplEvent: -1}
}

// LawNumber returns the text of <LawNum>, once it has been read.
func (d *Decoder) LawNumber() string {
	return d.lawNumber
}

// Next implements Stream.
func (d *Decoder) Next() (Fragment, error) {
	for len(d.ready) == 0 {
		token, err := d.decoder.Token()
		if err == io.EOF {
			return Fragment{}, io.EOF
		}
		if err != nil {
			return Fragment{}, fmt.Errorf("failed to parse law XML: %w", err)
		}

		switch element := token.(type) {
		case xml.StartElement:
			d.start(element)
		case xml.EndElement:
			d.end(element)
		case xml.CharData:
			d.charData(element)
		}
	}

	fragment := d.ready[0]
	d.ready = d.ready[1:]
	return fragment, nil
}

func (d *Decoder) start(element xml.StartElement) {
	name := element.Name.Local

	switch {
	case name == "LawNum":
		d.inLawNum = true
		d.lawNumText.Reset()
	case name == "Rt":
		d.ruby++
	case name == "NewProvision":
		d.newProvision++
	case name == "TableStruct":
		if d.table == 0 {
			d.tableText.Reset()
		}
		d.table++
	case sentenceContainers[name]:
		if d.sentence == 0 {
			d.sentenceText.Reset()
		}
		d.sentence++
	case name == "SupplProvisionLabel":
		d.inSupplLabel = true
		d.supplLabelText.Reset()
	}

	// Provisions quoted inside an amendment belong to the amended law.
	if d.newProvision > 0 || d.table > 0 {
		return
	}

	switch name {
	case "Article":
		d.pending = append(d.pending, Event{Kind: EventArticle, Num: attr(element, "Num")})
	case "Paragraph":
		d.pending = append(d.pending, Event{Kind: EventParagraph, Num: attr(element, "Num")})
	case "Item":
		d.pending = append(d.pending, Event{Kind: EventItem, Num: attr(element, "Num")})
	case "SupplProvision":
		d.supplEvent = len(d.pending)
		d.pending = append(d.pending, Event{Kind: EventSupplProvision, Title: attr(element, "AmendLawNum")})
	default:
		if depth, ok := subItemDepth(name); ok {
			d.pending = append(d.pending, Event{Kind: EventSubItem, Num: attr(element, "Num"), Depth: depth})
		}
	}
}

func (d *Decoder) end(element xml.EndElement) {
	name := element.Name.Local

	switch {
	case name == "LawNum":
		d.inLawNum = false
		d.lawNumber = cleanXMLText(d.lawNumText.String())
	case name == "Rt":
		d.ruby--
	case name == "NewProvision":
		d.newProvision--
	case name == "TableStruct":
		d.table--
		if d.table == 0 && d.newProvision == 0 {
			d.emit(KindTable, d.tableText.String())
		}
	case sentenceContainers[name]:
		d.sentence--
		if d.sentence == 0 && d.table == 0 && d.newProvision == 0 {
			d.emit(KindText, d.sentenceText.String())
		}
	case name == "SupplProvisionLabel":
		d.inSupplLabel = false
		d.nameSupplProvision(cleanXMLText(d.supplLabelText.String()))
	}
}

func (d *Decoder) charData(data xml.CharData) {
	if d.ruby > 0 {
		return
	}
	text := string(data)
	if d.inLawNum {
		d.lawNumText.WriteString(text)
	}
	if d.inSupplLabel {
		d.supplLabelText.WriteString(text)
	}
	if d.table > 0 {
		d.tableText.WriteString(text)
		return
	}
	if d.sentence > 0 {
		d.sentenceText.WriteString(text)
	}
}

// nameSupplProvision uses the block label as its title when the block has no
// AmendLawNum.
func (d *Decoder) nameSupplProvision(label string) {
	if d.supplEvent < 0 || d.supplEvent >= len(d.pending) {
		return
	}
	if d.pending[d.supplEvent].Title == "" {
		d.pending[d.supplEvent].Title = label
	}
	d.supplEvent = -1
}

func (d *Decoder) emit(kind FragmentKind, text string) {
	text = cleanXMLText(text)
	if text == "" {
		return
	}
	d.ready = append(d.ready, Fragment{Events: d.pending, Kind: kind, Text: text})
	d.pending = nil
	d.supplEvent = -1
}

func attr(element xml.StartElement, name string) string {
	for _, attribute := range element.Attr {
		if attribute.Name.Local == name {
			return attribute.Value
		}
	}
	return ""
}

// subItemDepth maps Subitem1..Subitem10 to 1..10.
func subItemDepth(name string) (int, bool) {
	rest, ok := strings.CutPrefix(name, "Subitem")
	if !ok {
		return 0, false
	}
	depth, err := strconv.Atoi(rest)
	if err != nil || depth < 1 || depth > 10 {
		return 0, false
	}
	return depth, true
}

// cleanXMLText drops the layout whitespace of the XML source. Japanese text
// has no word spacing, so whitespace runs are removed rather than collapsed.
func cleanXMLText(text string) string {
	return strings.Join(strings.Fields(text), "")
}
