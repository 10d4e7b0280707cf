package cmd

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pilosa/edxdk/backend"
	"github.com/pilosa/edxdk/structure"
	"github.com/pilosa/edxdk/test"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func TestSetAllConfig(t *testing.T) {
	dir, err := ioutil.TempDir("", "edxdk-cmd")
	test.ErrNil(t, err, "making temp dir")
	defer os.RemoveAll(dir)

	conf := filepath.Join(dir, "edxdk.toml")
	test.ErrNil(t, ioutil.WriteFile(conf, []byte(`
backend = "leveldb"
topics = ["a", "b"]
group = "from-file"
`), 0600), "writing config")

	var backendName, group, region, cfg string
	var topics []string
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.StringVar(&cfg, "config", "", "")
	flags.StringVar(&backendName, "backend", "bolt", "")
	flags.StringVar(&group, "group", "g", "")
	flags.StringVar(&region, "region", "us-east-1", "")
	flags.StringSliceVar(&topics, "topics", []string{"tracking"}, "")
	test.ErrNil(t, flags.Parse([]string{"--config", conf, "--group", "from-flag"}), "parsing flags")

	os.Setenv("EDXDK_REGION", "eu-west-1")
	defer os.Unsetenv("EDXDK_REGION")

	test.ErrNil(t, setAllConfig(viper.New(), flags, "EDXDK"), "setting config")
	test.MustBe(t, "leveldb", backendName)
	test.MustBe(t, []string{"a", "b"}, topics)
	test.MustBe(t, "from-flag", group)
	test.MustBe(t, "eu-west-1", region)
}

func TestSetAllConfigMissingFile(t *testing.T) {
	var cfg string
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.StringVar(&cfg, "config", "", "")
	test.ErrNil(t, flags.Parse([]string{"--config", "/nonexistent/edxdk.toml"}), "parsing flags")
	if err := setAllConfig(viper.New(), flags, "EDXDK"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestStructureCommandArity(t *testing.T) {
	stderr := &bytes.Buffer{}
	rc := NewRootCommand(strings.NewReader(""), ioutil.Discard, stderr)
	rc.SetArgs([]string{"structure", "edx.db", "course_structure"})
	if err := rc.Execute(); err == nil {
		t.Fatal("expected error for wrong number of arguments")
	}
	if !strings.Contains(stderr.String(), "Usage:") {
		t.Fatalf("usage not printed: %s", stderr.String())
	}
}

func TestStructureCommand(t *testing.T) {
	dir, err := ioutil.TempDir("", "edxdk-cmd")
	test.ErrNil(t, err, "making temp dir")
	defer os.RemoveAll(dir)

	export := filepath.Join(dir, "course_structure.json")
	test.ErrNil(t, ioutil.WriteFile(export, []byte(`{
  "i4x://MITx/6.002x/chapter/Week_1": {"category": "chapter", "children": ["i4x://MITx/6.002x/conditional/c1"], "metadata": {"display_name": "Week 1"}},
  "i4x://MITx/6.002x/conditional/c1": {"category": "conditional", "children": ["i4x://MITx/6.002x/sequential/s1"], "metadata": {}},
  "i4x://MITx/6.002x/sequential/s1": {"category": "sequential", "children": [], "metadata": {"display_name": "Lesson"}}
}`), 0600), "writing export")
	db := filepath.Join(dir, "edx.db")

	stderr := &bytes.Buffer{}
	rc := NewRootCommand(strings.NewReader(""), ioutil.Discard, stderr)
	rc.SetArgs([]string{"structure", "--backend", "badger", db, "course_structure", export})
	test.ErrNil(t, rc.Execute(), "executing: "+stderr.String())
	if !strings.Contains(stderr.String(), `"command":"structure"`) {
		t.Errorf("structured log line missing: %s", stderr.String())
	}

	pool := backend.NewPool(backend.Badger)
	defer pool.Close()
	c, err := pool.Collection(db, "course_structure")
	test.ErrNil(t, err, "opening result")
	s1, err := structure.NewStore(c).FindByID("s1")
	test.ErrNil(t, err, "finding s1")
	v, _ := s1.ParentData.Get("chapter_display_name")
	test.MustBe(t, "Week 1", v)
}

func TestTrackingCommandBadConfig(t *testing.T) {
	stderr := &bytes.Buffer{}
	rc := NewRootCommand(strings.NewReader(""), ioutil.Discard, stderr)
	rc.SetArgs([]string{"tracking", "--config-file", "/nonexistent/course.json"})
	err := rc.Execute()
	if err == nil || !strings.Contains(err.Error(), "course config") {
		t.Fatalf("expected course config error, got %v", err)
	}
	if strings.Contains(stderr.String(), "Usage:") {
		t.Fatalf("usage printed for a runtime error: %s", stderr.String())
	}
}
