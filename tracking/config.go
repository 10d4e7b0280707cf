package tracking

import (
	"io"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config selects the courses and the date window to extract.
type Config struct {
	CourseIDs []string
	Start     time.Time
	End       time.Time
}

type rawConfig struct {
	CourseIDs  []string `mapstructure:"course_ids"`
	Enrollment string   `mapstructure:"date_of_course_enrollment"`
	Completion string   `mapstructure:"date_of_course_completion"`
}

var configKeys = []string{"course_ids", "date_of_course_enrollment", "date_of_course_completion"}

// LoadConfig reads a course selection file such as
//
//   {"course_ids": ["MITx/6.002x/2012_Fall"],
//    "date_of_course_enrollment": "2012-09-01",
//    "date_of_course_completion": "2012-12-31"}
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening course config")
	}
	defer f.Close()
	conf, err := ParseConfig(f)
	return conf, errors.Wrapf(err, "reading %s", path)
}

// ParseConfig is LoadConfig for an already open file.
func ParseConfig(r io.Reader) (*Config, error) {
	v := viper.New()
	v.SetConfigType("json")
	if err := v.ReadConfig(r); err != nil {
		return nil, errors.Wrap(err, "decoding course config")
	}
	for _, key := range configKeys {
		if !v.IsSet(key) {
			return nil, errors.Errorf("missing '%s'", key)
		}
	}
	if _, ok := v.Get("course_ids").([]interface{}); !ok {
		return nil, errors.Errorf("expecting list of course ids, got %T", v.Get("course_ids"))
	}

	raw := rawConfig{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{Result: &raw})
	if err != nil {
		return nil, errors.Wrap(err, "getting config decoder")
	}
	if err := dec.Decode(v.AllSettings()); err != nil {
		return nil, errors.Wrap(err, "decoding course config")
	}
	if len(raw.CourseIDs) == 0 {
		return nil, errors.New("no course ids given")
	}

	conf := &Config{CourseIDs: raw.CourseIDs}
	if conf.Start, err = time.Parse(DateFormat, raw.Enrollment); err != nil {
		return nil, errors.Wrap(err, "incorrect date_of_course_enrollment, should be YYYY-MM-DD")
	}
	if conf.End, err = time.Parse(DateFormat, raw.Completion); err != nil {
		return nil, errors.Wrap(err, "incorrect date_of_course_completion, should be YYYY-MM-DD")
	}
	if conf.End.Before(conf.Start) {
		return nil, errors.Errorf("course completion %s is before enrollment %s", raw.Completion, raw.Enrollment)
	}
	return conf, nil
}
