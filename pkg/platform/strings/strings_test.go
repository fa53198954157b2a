package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		sep  string
		want []string
	}{
		{"empty", "", ",", nil},
		{"only separators and blanks", " , ,, ", ",", nil},
		{"brokers", "kafka-1:9092, kafka-2:9092", ",", []string{"kafka-1:9092", "kafka-2:9092"}},
		{"duplicates keep first position", "b,a,b, a ,c", ",", []string{"b", "a", "c"}},
		{"other separator", "x;y", ";", []string{"x", "y"}},
		{"no separator present", " solo ", ",", []string{"solo"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SplitList(tc.raw, tc.sep))
		})
	}
}

func TestCollapseNonAlnum(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Intro to Go: Part 1!", "Intro_to_Go_Part_1"},
		{"  --Ada   Lovelace--  ", "Ada_Lovelace"},
		{"Évaluation & Suivi", "Évaluation_Suivi"},
		{"!!!", ""},
		{"", ""},
		{"already_clean", "already_clean"},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, CollapseNonAlnum(tc.in, "_"))
		})
	}
}
