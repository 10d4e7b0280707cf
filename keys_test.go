package edxdk_test

import (
	"testing"

	"github.com/pilosa/edxdk"
)

func TestShortKey(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "i4x://MITx/6.002x/problem/Sample_Problem", want: "Sample_Problem"},
		{raw: "chapter1", want: "chapter1"},
		{raw: "a/b/", want: ""},
		{raw: "", want: ""},
	}
	for _, tst := range tests {
		if got := edxdk.ShortKey(tst.raw); got != tst.want {
			t.Errorf("ShortKey(%q): got %q, want %q", tst.raw, got, tst.want)
		}
	}
}

func TestEventKey(t *testing.T) {
	tests := []struct {
		id   string
		want string
		ok   bool
	}{
		{id: "i4x-MITx-6_002x-problem-Sample_Problem", want: "Sample_Problem", ok: true},
		{id: "i4x://MITx/6.002x/video/intro", want: "intro", ok: true},
		{id: "a-b-c", ok: false},
		{id: "input_abc_2_1", ok: false},
		{id: "i4x-MITx-6_002x-problem-", ok: false},
	}
	for _, tst := range tests {
		got, ok := edxdk.EventKey(tst.id)
		if got != tst.want || ok != tst.ok {
			t.Errorf("EventKey(%q): got (%q, %v), want (%q, %v)", tst.id, got, ok, tst.want, tst.ok)
		}
	}
}

func TestPageKey(t *testing.T) {
	tests := []struct {
		page string
		want string
		ok   bool
	}{
		{page: "https://courses.edx.org/courses/MITx/6.002x/2013_Spring/courseware/week1/lesson1/", want: "lesson1", ok: true},
		{page: "x/y", ok: false},
		{page: "", ok: false},
		{page: "a/b//", ok: false},
	}
	for _, tst := range tests {
		got, ok := edxdk.PageKey(tst.page)
		if got != tst.want || ok != tst.ok {
			t.Errorf("PageKey(%q): got (%q, %v), want (%q, %v)", tst.page, got, ok, tst.want, tst.ok)
		}
	}
}
