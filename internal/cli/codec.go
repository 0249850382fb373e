package cli

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/biyonik/datamapper/pkg/relation"
)

// DecodeOptions, decode komutunun flag'leridir.
type DecodeOptions struct {
	*RootOptions
	Hex bool
}

// NewDecodeCommand, decode komutunu oluşturur. Girdi argüman olarak veya
// stdin'den okunur.
func NewDecodeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DecodeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "decode [aggregate-text]",
		Short: "Decode an aggregate column value into JSON",
		Example: `  mapperctl decode 'id-:-1-::-name-:-admin-:::-id-:-2-::-name-:-editor'
  echo 312D3A3A3A2D32 | mapperctl decode --hex`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(cmd, args)
			if err != nil {
				return err
			}
			if opts.Hex {
				raw, err := hex.DecodeString(text)
				if err != nil {
					return fmt.Errorf("invalid hex input: %w", err)
				}
				text = string(raw)
			}
			return NewPrinter(cmd.OutOrStdout(), "json").JSON(relation.Decode(text))
		},
	}

	cmd.Flags().BoolVar(&opts.Hex, "hex", false, "input is HEX encoded (nested aggregate)")
	return cmd
}

// NewEncodeCommand, encode komutunu oluşturur: JSON nesne listesini
// aggregate metnine çevirir.
func NewEncodeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "encode [json]",
		Short:   "Encode a JSON array of objects into aggregate text",
		Example: `  mapperctl encode '[{"id":1,"name":"admin"}]'`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(cmd, args)
			if err != nil {
				return err
			}

			var rows []map[string]any
			dec := json.NewDecoder(strings.NewReader(text))
			dec.UseNumber()
			if err := dec.Decode(&rows); err != nil {
				return fmt.Errorf("invalid JSON input: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), relation.Encode(rows))
			return err
		},
	}
}

// inputText, ilk argümanı veya (yoksa) stdin'in tamamını döndürür.
func inputText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
