package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/restpath/internal/constants"
	"github.com/fivetwenty-io/restpath/pkg/rest"
)

// Masked replaces secrets in displayed configuration.
const Masked = "***"

// parseQuery turns repeated key=value flags into an ordered query.
func parseQuery(values []string) (rest.Query, error) {
	query := make(rest.Query, 0, len(values))

	for _, value := range values {
		parts := strings.SplitN(value, "=", constants.KeyValueParts)
		if len(parts) != constants.KeyValueParts || parts[0] == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidQueryFlag, value)
		}

		query = query.Add(parts[0], parts[1])
	}

	return query, nil
}

// parseHeaders turns repeated name:value flags into a header map.
func parseHeaders(values []string) (map[string]string, error) {
	headers := make(map[string]string, len(values))

	for _, value := range values {
		parts := strings.SplitN(value, ":", constants.KeyValueParts)
		if len(parts) != constants.KeyValueParts || strings.TrimSpace(parts[0]) == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidHeaderFlag, value)
		}

		headers[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}

	return headers, nil
}

// parseData validates a --data value. An empty value means no body.
func parseData(data string) (*resource, error) {
	if data == "" {
		return nil, nil
	}

	if !json.Valid([]byte(data)) {
		return nil, fmt.Errorf("%w: %.40q", constants.ErrInvalidDataFlag, data)
	}

	return &resource{raw: json.RawMessage(data)}, nil
}

func validateOutput(format string) error {
	switch format {
	case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
		return nil
	default:
		return fmt.Errorf("%w: %q", constants.ErrInvalidOutput, format)
	}
}

func maskSecret(secret string) string {
	if secret == "" {
		return ""
	}

	return Masked
}
