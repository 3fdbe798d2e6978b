package utils

import (
	"fmt"
)

// StringsIsSubset checks that every element of subset is in full, and
// returns error formatted with errorFmt for the first one that is not
func StringsIsSubset(subset []string, full []string, errorFmt string) error {
	for _, checked := range subset {
		found := false
		for _, s := range full {
			if checked == s {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf(errorFmt, checked)
		}
	}
	return nil
}
