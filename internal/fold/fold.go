/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package fold compares player names and words the way people read them:
// Unicode normalized and without regard to case.
package fold

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Key returns the comparison form of s. A cases.Caser holds state, so one
// is made per call.
func Key(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

// Equal reports whether a and b are the same name once folded.
func Equal(a, b string) bool {
	return Key(a) == Key(b)
}

// Contains reports whether list holds a name equal to s once folded.
func Contains(list []string, s string) bool {
	k := Key(s)
	for _, v := range list {
		if Key(v) == k {
			return true
		}
	}
	return false
}
