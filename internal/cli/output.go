package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Printer, komut çıktılarını seçilen biçimde yazar. Metin biçiminde SQL ve
// parametreler renklendirilir; JSON biçiminde renk kullanılmaz.
type Printer struct {
	out    io.Writer
	format string

	sql    *color.Color
	params *color.Color
	label  *color.Color
}

// NewPrinter, verilen writer ve biçim için bir Printer oluşturur.
func NewPrinter(out io.Writer, format string) *Printer {
	return &Printer{
		out:    out,
		format: format,
		sql:    color.New(color.FgCyan, color.Bold),
		params: color.New(color.FgYellow),
		label:  color.New(color.FgHiBlack),
	}
}

// statementOutput, compile/ddl komutlarının JSON çıktısıdır.
type statementOutput struct {
	SQL    string `json:"sql"`
	Params []any  `json:"params"`
}

// Statement, derlenmiş bir statement'ı ve parametrelerini yazar.
func (p *Printer) Statement(sqlStr string, params []any) error {
	if params == nil {
		params = []any{}
	}
	if p.format == "json" {
		return p.JSON(statementOutput{SQL: sqlStr, Params: params})
	}

	if _, err := p.sql.Fprintln(p.out, sqlStr); err != nil {
		return err
	}
	if _, err := p.label.Fprint(p.out, "params: "); err != nil {
		return err
	}
	_, err := p.params.Fprintln(p.out, fmt.Sprintf("%v", params))
	return err
}

// JSON, değeri girintili JSON olarak yazar.
func (p *Printer) JSON(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Value, metin biçiminde tek bir değeri etiketle, JSON biçiminde nesne
// olarak yazar.
func (p *Printer) Value(label string, v any) error {
	if p.format == "json" {
		return p.JSON(map[string]any{label: v})
	}
	if _, err := p.label.Fprintf(p.out, "%s: ", label); err != nil {
		return err
	}
	_, err := fmt.Fprintln(p.out, v)
	return err
}

// PrintError, hatayı kırmızı olarak yazar.
func PrintError(w io.Writer, err error) {
	color.New(color.FgRed, color.Bold).Fprintf(w, "❌ %v\n", err)
}
