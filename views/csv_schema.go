package views

import "fmt"

// ValidateHeader checks that header names exactly the columns of want, in order.
func ValidateHeader(header, want []string) error {
	if len(header) != len(want) {
		return fmt.Errorf("header has %d columns, want %d", len(header), len(want))
	}
	for i := range want {
		if header[i] != want[i] {
			return fmt.Errorf("column %d is %q, want %q", i, header[i], want[i])
		}
	}
	return nil
}
