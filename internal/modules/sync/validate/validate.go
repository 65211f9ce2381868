// Package validate holds the pure invariant predicates shared by the record
// services and the verify phase of the sync pipeline. Every check is
// side-effect free: callers gather current state and pass it in.
package validate

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// NoDuplicates rejects an ordered member list that references the same
// item twice.
func NoDuplicates(label string, members []string) error {
	seen := make(map[string]struct{}, len(members))
	for _, m := range members {
		if _, ok := seen[m]; ok {
			return fmt.Errorf("%s %q appears more than once", label, m)
		}
		seen[m] = struct{}{}
	}
	return nil
}

// SameMemberSet enforces set immutability on update: the proposed member
// set must equal the current one. Only ordering and per-member attributes
// may change. The error names the full symmetric difference.
func SameMemberSet(label string, current, proposed []string) error {
	cur := make(map[string]struct{}, len(current))
	for _, m := range current {
		cur[m] = struct{}{}
	}
	prop := make(map[string]struct{}, len(proposed))
	for _, m := range proposed {
		prop[m] = struct{}{}
	}

	var missing, extra []string
	for m := range cur {
		if _, ok := prop[m]; !ok {
			missing = append(missing, m)
		}
	}
	for m := range prop {
		if _, ok := cur[m]; !ok {
			extra = append(extra, m)
		}
	}
	if len(missing) == 0 && len(extra) == 0 {
		return nil
	}
	sort.Strings(missing)
	sort.Strings(extra)

	parts := make([]string, 0, 2)
	if len(missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing %s: %s", label, strings.Join(missing, ", ")))
	}
	if len(extra) > 0 {
		parts = append(parts, fmt.Sprintf("extra %s: %s", label, strings.Join(extra, ", ")))
	}
	return fmt.Errorf("%s set is immutable on update (%s)", label, strings.Join(parts, "; "))
}

// AppendOnlyOptions enforces that a question update may add options but
// never remove existing ones.
func AppendOnlyOptions(current, proposed []string) error {
	prop := make(map[string]struct{}, len(proposed))
	for _, o := range proposed {
		prop[o] = struct{}{}
	}
	var removed []string
	for _, o := range current {
		if _, ok := prop[o]; !ok {
			removed = append(removed, o)
		}
	}
	if len(removed) == 0 {
		return nil
	}
	sort.Strings(removed)
	return fmt.Errorf("options may only be added, never removed (removed: %s)", strings.Join(removed, ", "))
}

// DefaultInOptions requires a declared default answer to be one of the
// question's options.
func DefaultInOptions(def string, options []string) error {
	if def == "" {
		return nil
	}
	for _, o := range options {
		if o == def {
			return nil
		}
	}
	return fmt.Errorf("default option %q is not a member of the option list", def)
}

// DisplayValuesParallel requires display labels, when given, to pair
// one-to-one with options.
func DisplayValuesParallel(options, displayValues []string) error {
	if len(displayValues) == 0 {
		return nil
	}
	if len(displayValues) != len(options) {
		return fmt.Errorf("display_values length %d does not match options length %d",
			len(displayValues), len(options))
	}
	return nil
}

// ReusableExclusive rejects attaching a non-reusable question group to a
// schema when a different schema already references it.
func ReusableExclusive(groupTitle string, reusable bool, usedBySchemas []string, targetSchema string) error {
	if reusable {
		return nil
	}
	for _, s := range usedBySchemas {
		if s != targetSchema {
			return fmt.Errorf("question group %q is not reusable and already belongs to schema %q",
				groupTitle, s)
		}
	}
	return nil
}

// ProjectPairExclusion implements the project-group membership rule: two
// member projects whose question sets intersect must have disjoint
// non-archived video sets. sharedVideos is the (already computed)
// intersection of the two projects' non-archived videos, present only when
// sharedQuestions is non-empty.
func ProjectPairExclusion(p1, p2 string, sharedQuestions, sharedVideos []string) error {
	if len(sharedQuestions) == 0 || len(sharedVideos) == 0 {
		return nil
	}
	sorted := append([]string(nil), sharedVideos...)
	sort.Strings(sorted)
	return fmt.Errorf("projects %q and %q share questions and both contain non-archived videos: %s",
		p1, p2, strings.Join(sorted, ", "))
}

// AdminLock rejects a plain reviewer submission against a ground-truth row
// that an admin has overridden.
func AdminLock(questionText, adminID string, overriddenAt *time.Time) error {
	if adminID == "" {
		return nil
	}
	when := "unknown time"
	if overriddenAt != nil {
		when = overriddenAt.UTC().Format(time.RFC3339)
	}
	return fmt.Errorf("question %q is locked by admin %s (overridden at %s)",
		questionText, adminID, when)
}

// RoleLegal enforces role legality in both directions: the admin project
// role is reserved for global admins (and global admins may hold nothing
// else), and the model role is reserved for model-type users.
func RoleLegal(role, userType string) error {
	const (
		roleAdmin = "admin"
		roleModel = "model"
	)
	if role == roleAdmin && userType != "admin" {
		return fmt.Errorf("admin role requires a global admin user (user type is %q)", userType)
	}
	if userType == "admin" && role != roleAdmin {
		return fmt.Errorf("global admin cannot hold the %q role", role)
	}
	if role == roleModel && userType != "model" {
		return fmt.Errorf("model role requires a model-type user (user type is %q)", userType)
	}
	if userType == "model" && role != roleModel {
		return fmt.Errorf("model-type user cannot hold the %q role", role)
	}
	return nil
}

// Intersect returns the sorted intersection of two string sets.
func Intersect(a, b []string) []string {
	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		set[s] = struct{}{}
	}
	var out []string
	seen := make(map[string]struct{})
	for _, s := range b {
		if _, ok := set[s]; ok {
			if _, dup := seen[s]; !dup {
				out = append(out, s)
				seen[s] = struct{}{}
			}
		}
	}
	sort.Strings(out)
	return out
}
