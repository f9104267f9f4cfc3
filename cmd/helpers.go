package cmd

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"

	domainvetting "candidatevet/internal/domain/vetting"
	"candidatevet/internal/errs"
)

// actingCaps reads the --as and --member-id persistent flags.
func actingCaps(cmd *cobra.Command) (domainvetting.Capabilities, error) {
	raw, _ := cmd.Flags().GetString("as")
	memberID, _ := cmd.Flags().GetUint64("member-id")
	return domainvetting.ParseCapabilities(raw, memberID)
}

func printJSON(cmd *cobra.Command, value any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(value); err != nil {
		return errs.Wrap(err, "write json output")
	}
	return nil
}

// readJSONFlag accepts inline JSON or @path to a file.
func readJSONFlag(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "@") {
		return raw, nil
	}
	data, err := os.ReadFile(strings.TrimPrefix(raw, "@"))
	if err != nil {
		return "", errs.Wrap(err, "read json file")
	}
	return strings.TrimSpace(string(data)), nil
}
