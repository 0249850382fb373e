// -----------------------------------------------------------------------------
// mapperctl CLI
// -----------------------------------------------------------------------------
// Komutlar:
//   - compile: Modelin SELECT/COUNT sorgusunu derler, SQL + parametreleri basar
//   - ddl:     CREATE TABLE statement'ını basar (--apply ile çalıştırır)
//   - decode:  Aggregate metnini JSON'a çevirir
//   - encode:  JSON kayıt listesini aggregate metnine çevirir
//   - query:   Sorguyu MySQL üzerinde çalıştırır, kayıtları JSON basar
//
// Model, --schema ile bir YAML dosyasından ya da --model ile gömülü
// modellerden seçilir.
// -----------------------------------------------------------------------------

package cli

import (
	"fmt"
	"io"
	"log"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/biyonik/datamapper/internal/models"
	"github.com/biyonik/datamapper/internal/schema"
	"github.com/biyonik/datamapper/pkg/storage"
)

// RootOptions, tüm komutların paylaştığı global flag'lerdir.
type RootOptions struct {
	Schema  string   // YAML model dosyası
	Model   string   // Gömülü model adı (--schema yoksa)
	Format  string   // "text" | "json"
	EnvFile []string // Yüklenecek .env dosyaları
	NoColor bool
	Verbose bool

	connect Connector
}

// ValidFormats, izin verilen çıktı biçimleri.
var ValidFormats = []string{"text", "json"}

// NewRootCommand, mapperctl kök komutunu oluşturur.
func NewRootCommand() *cobra.Command {
	return newRootCommand(Connect)
}

func newRootCommand(connect Connector) *cobra.Command {
	opts := &RootOptions{connect: connect}

	cmd := &cobra.Command{
		Use:   "mapperctl",
		Short: "mapperctl - SQL query compiler and row decoder",
		Long: `mapperctl compiles model definitions (fields, joins and one-to-many
aggregates) into single MySQL statements and decodes the aggregated rows
back into nested records.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if opts.NoColor {
				color.NoColor = true
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.Schema, "schema", "s", "", "YAML model file")
	cmd.PersistentFlags().StringVarP(&opts.Model, "model", "m", "users", fmt.Sprintf("built-in model %v", models.Names()))
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringArrayVar(&opts.EnvFile, "env-file", nil, "env files to load (default .env)")
	cmd.PersistentFlags().BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log every statement to stderr")

	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewDDLCommand(opts))
	cmd.AddCommand(NewDecodeCommand(opts))
	cmd.AddCommand(NewEncodeCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// loadModel, --schema verilmişse YAML dosyasını, yoksa gömülü modeli yükler.
func (o *RootOptions) loadModel() (storage.Model, error) {
	if o.Schema != "" {
		return schema.Load(o.Schema)
	}
	return models.Lookup(o.Model)
}

// logger, --verbose ise stderr'e, değilse hiçbir yere yazan logger döndürür.
func (o *RootOptions) logger(cmd *cobra.Command) *log.Logger {
	if !o.Verbose {
		return log.New(io.Discard, "", 0)
	}
	return log.New(cmd.ErrOrStderr(), "mapperctl ", log.LstdFlags)
}

func (o *RootOptions) printer(cmd *cobra.Command) *Printer {
	return NewPrinter(cmd.OutOrStdout(), o.Format)
}
