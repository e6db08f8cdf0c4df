package types

import "fmt"

func errMissing(field string) error {
	return fmt.Errorf("report: %s is required", field)
}
