package export

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"

	"github.com/vvka-141/roomstat/internal/query"
	"github.com/vvka-141/roomstat/pkg/roomstat"
)

const jsonIndent = "    "

// Export renders res in format and writes the finished document to w.
func Export(w io.Writer, res *query.Result, format roomstat.Format) error {
	doc, err := Render(res, format)
	if err != nil {
		return err
	}
	if _, err := w.Write(doc); err != nil {
		return &roomstat.ExportError{Err: err}
	}
	return nil
}

// Render returns the complete document for res. An unknown format yields
// *roomstat.UnsupportedFormatError.
func Render(res *query.Result, format roomstat.Format) ([]byte, error) {
	if res == nil {
		return nil, &roomstat.ExportError{Err: fmt.Errorf("no result to export")}
	}

	var (
		doc []byte
		err error
	)
	switch format {
	case roomstat.FormatJSON:
		doc, err = renderJSON(res)
	case roomstat.FormatXML:
		doc, err = renderXML(res)
	default:
		return nil, &roomstat.UnsupportedFormatError{Format: string(format)}
	}
	if err != nil {
		return nil, &roomstat.ExportError{Err: fmt.Errorf("render %s as %s: %w", res.Query, format, err)}
	}
	return doc, nil
}

// renderJSON writes objects with keys in column order, which a map cannot
// guarantee, then re-indents the compact form.
func renderJSON(res *query.Result) ([]byte, error) {
	var compact bytes.Buffer
	compact.WriteByte('[')
	for i, row := range res.Rows {
		if i > 0 {
			compact.WriteByte(',')
		}
		compact.WriteByte('{')
		for j, field := range row {
			if j > 0 {
				compact.WriteByte(',')
			}
			key, err := json.Marshal(field.Name)
			if err != nil {
				return nil, err
			}
			value, err := json.Marshal(field.Value)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", field.Name, err)
			}
			compact.Write(key)
			compact.WriteByte(':')
			compact.Write(value)
		}
		compact.WriteByte('}')
	}
	compact.WriteByte(']')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", jsonIndent); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func renderXML(res *query.Result) ([]byte, error) {
	var out bytes.Buffer
	out.WriteString(xml.Header)

	enc := xml.NewEncoder(&out)
	enc.Indent("", "  ")

	root := xml.StartElement{
		Name: xml.Name{Local: "results"},
		Attr: []xml.Attr{{Name: xml.Name{Local: "query"}, Value: string(res.Query)}},
	}
	if err := enc.EncodeToken(root); err != nil {
		return nil, err
	}
	for _, row := range res.Rows {
		rowStart := xml.StartElement{Name: xml.Name{Local: "row"}}
		if err := enc.EncodeToken(rowStart); err != nil {
			return nil, err
		}
		for _, field := range row {
			if err := encodeField(enc, field); err != nil {
				return nil, fmt.Errorf("field %s: %w", field.Name, err)
			}
		}
		if err := enc.EncodeToken(rowStart.End()); err != nil {
			return nil, err
		}
	}
	if err := enc.EncodeToken(root.End()); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func encodeField(enc *xml.Encoder, field query.Field) error {
	start := xml.StartElement{Name: xml.Name{Local: field.Name}}
	if field.Value == nil {
		start.Attr = []xml.Attr{{Name: xml.Name{Local: "null"}, Value: "true"}}
		if err := enc.EncodeToken(start); err != nil {
			return err
		}
		return enc.EncodeToken(start.End())
	}

	text, err := xmlText(field.Value)
	if err != nil {
		return err
	}
	return enc.EncodeElement(text, start)
}

func xmlText(v any) (string, error) {
	switch value := v.(type) {
	case int64:
		return strconv.FormatInt(value, 10), nil
	case string:
		return value, nil
	case roomstat.Decimal:
		return value.String(), nil
	case fmt.Stringer:
		return value.String(), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}
