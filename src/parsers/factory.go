package parsers

import (
	"fmt"

	"github.com/username/extratodb/src/parsers/itau"
)

func GetParser(source string) (StatementParser, error) {
	switch source {
	case "itau":
		return itau.NewParser(), nil
	default:
		return nil, fmt.Errorf("no parser available for source: %s", source)
	}
}
