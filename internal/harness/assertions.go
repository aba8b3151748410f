package harness

import (
	"fmt"
	"slices"
)

// checkExpect compares one step outcome with its expectations and returns
// a message per mismatch.
func checkExpect(i int, step Step, event TraceEvent) []string {
	exp := step.Expect
	prefix := fmt.Sprintf("steps[%d]", i)
	if step.Name != "" {
		prefix = fmt.Sprintf("steps[%d] (%s)", i, step.Name)
	}

	if exp == nil {
		if event.Error != "" {
			return []string{fmt.Sprintf("%s: unexpected error %s", prefix, event.Error)}
		}
		return nil
	}

	var errs []string
	if exp.Error != event.Error {
		switch {
		case exp.Error == "":
			errs = append(errs, fmt.Sprintf("%s: unexpected error %s", prefix, event.Error))
		case event.Error == "":
			errs = append(errs, fmt.Sprintf("%s: expected error %s, query succeeded", prefix, exp.Error))
		default:
			errs = append(errs, fmt.Sprintf("%s: expected error %s, got %s", prefix, exp.Error, event.Error))
		}
	}
	if exp.IDs != nil && !slices.Equal(exp.IDs, nonNil(event.IDs)) {
		errs = append(errs, fmt.Sprintf("%s: expected ids %v, got %v", prefix, exp.IDs, event.IDs))
	}
	if exp.Total != nil && *exp.Total != event.Total {
		errs = append(errs, fmt.Sprintf("%s: expected total %d, got %d", prefix, *exp.Total, event.Total))
	}
	if exp.HasMore != nil && *exp.HasMore != event.HasMore {
		errs = append(errs, fmt.Sprintf("%s: expected has_more %t, got %t", prefix, *exp.HasMore, event.HasMore))
	}
	if exp.Warnings != nil && !slices.Equal(exp.Warnings, nonNil(event.Warnings)) {
		errs = append(errs, fmt.Sprintf("%s: expected warnings %v, got %v", prefix, exp.Warnings, event.Warnings))
	}
	return errs
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
