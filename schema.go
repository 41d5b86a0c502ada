package newsthreads

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"
)

var SchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of a document in the documents input file",
	RunE: func(cmd *cobra.Command, args []string) error {
		schema, err := documentSchema()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(schema))
		return err
	},
}

// documentSchema returns the indented JSON schema of Document. The documents
// file is a JSON array of such objects.
func documentSchema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schemaObj := reflector.Reflect(&Document{})
	if schemaObj.Type == "" {
		schemaObj.Type = "object"
	}

	schemaBytes, err := json.MarshalIndent(schemaObj, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return schemaBytes, nil
}
