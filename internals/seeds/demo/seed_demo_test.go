package demo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDemoSeedBundledFile(t *testing.T) {
	seed, err := LoadDemoSeed("data_demo.json")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(seed.Classes) != 1 || len(seed.Classes[0].Subjects) != 2 || len(seed.Classes[0].Students) != 3 {
		t.Fatalf("seed = %+v", seed)
	}
	if seed.Classes[0].Subjects[1].Sessions[1].Type != "lab" {
		t.Fatalf("sessions = %+v", seed.Classes[0].Subjects[1].Sessions)
	}
}

func TestLoadDemoSeedRejects(t *testing.T) {
	const school = `"school":{"name":"S","admin_name":"A","email":"a@s.id","password":"admin12345"}`
	tests := []struct {
		name string
		json string
		want string
	}{
		{"no classes", `{` + school + `,"classes":[]}`, "tidak valid"},
		{"unknown teacher", `{` + school + `,"classes":[{"name":"X","subjects":[{"name":"M","code":"M","teacher_email":"x@s.id"}]}]}`, "tidak ada di daftar teachers"},
		{"duplicate code", `{` + school + `,"classes":[{"name":"X","students":[
			{"name":"A","code":"k1","roll_num":1,"password":"secret1"},
			{"name":"B","code":"K1","roll_num":2,"password":"secret1"}]}]}`, "lebih dari sekali"},
		{"bad session type", `{` + school + `,"classes":[{"name":"X","subjects":[{"name":"M","code":"M","sessions":[{"type":"kuliah","sessions_per_week":1}]}]}]}`, "tidak valid"},
		{"broken json", `{`, "decode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "seed.json")
			if err := os.WriteFile(path, []byte(tt.json), 0o600); err != nil {
				t.Fatal(err)
			}
			_, err := LoadDemoSeed(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want %q", err, tt.want)
			}
		})
	}

	if _, err := LoadDemoSeed(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("missing file must fail")
	}
}
