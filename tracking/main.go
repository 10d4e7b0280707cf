package tracking

import (
	"github.com/pilosa/edxdk"
	"github.com/pilosa/edxdk/aws/s3"
	"github.com/pilosa/edxdk/backend"
	"github.com/pilosa/edxdk/file"
	"github.com/pilosa/edxdk/kafka"
	"github.com/pilosa/edxdk/structure"
	"github.com/pkg/errors"
)

// Names of the supported event sources.
const (
	SourceDB    = "db"
	SourceFile  = "file"
	SourceS3    = "s3"
	SourceKafka = "kafka"
)

// Main extracts a course's tracking events into their own collection.
type Main struct {
	ConfigFile string `help:"Course selection file (course_ids, date_of_course_enrollment, date_of_course_completion)."`
	Drop       bool   `help:"Empty the destination collection first."`
	Enrich     bool   `help:"Add parent_data and metadata of the referenced course structure block to each event."`
	Backend    string `help:"Storage backend: bolt, leveldb, badger or memory."`

	Source           string `help:"Where to read events from: db, file, s3 or kafka."`
	SourceDB         string `help:"Database holding the platform's tracking collection (db source)."`
	SourceCollection string `help:"Tracking collection to read (db source)."`

	DestDB         string `help:"Database to write the course's events to."`
	DestCollection string `help:"Collection to write the course's events to."`

	StructureDB         string `help:"Database holding the imported course structure (defaults to the destination database)."`
	StructureCollection string `help:"Course structure collection used for enrichment."`

	Path string `help:"Log file or directory of log files (file source)."`

	Bucket string `help:"S3 bucket (s3 source)."`
	Region string `help:"AWS region (s3 source)."`
	Prefix string `help:"S3 key prefix (s3 source)."`

	KafkaHosts  []string `help:"Comma separated list of Kafka hosts and ports (kafka source)."`
	Topics      []string `help:"Kafka topics to read (kafka source)."`
	Group       string   `help:"Kafka consumer group (kafka source)."`
	RegistryURL string   `help:"Confluent schema registry host:port. Events are Avro encoded if set (kafka source)."`
	MaxMsgs     int      `help:"Number of Kafka messages to read before stopping (kafka source)."`

	log   edxdk.Logger
	stats edxdk.Statter
}

// NewMain gets a new Main with the default configuration.
func NewMain() *Main {
	return &Main{
		Backend:             backend.Bolt,
		Source:              SourceDB,
		SourceDB:            "tracking.db",
		SourceCollection:    "tracking",
		DestCollection:      "tracking",
		StructureCollection: "course_structure",
		Region:              "us-east-1",
		KafkaHosts:          []string{"localhost:9092"},
		Topics:              []string{"tracking"},
		Group:               "edxdk",

		log:   edxdk.NopLogger{},
		stats: edxdk.NopStatter{},
	}
}

// SetObservability sets the logger and statter used by Run.
func (m *Main) SetObservability(log edxdk.Logger, stats edxdk.Statter) {
	m.log, m.stats = log, stats
}

// Run loads the course selection and extracts its events.
func (m *Main) Run() (err error) {
	_, err = m.run()
	return err
}

func (m *Main) run() (res Result, err error) {
	conf, err := LoadConfig(m.ConfigFile)
	if err != nil {
		return res, errors.Wrap(err, "loading course config")
	}
	if m.DestDB == "" && m.Backend != backend.Memory {
		return res, errors.New("no destination database given")
	}

	pool := backend.NewPool(m.Backend)
	defer func() {
		if cerr := pool.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	dest, err := pool.Collection(m.DestDB, m.DestCollection)
	if err != nil {
		return res, errors.Wrap(err, "opening destination")
	}
	src, closeSrc, err := m.eventLog(pool)
	if err != nil {
		return res, errors.Wrap(err, "opening event source")
	}
	defer closeSrc()

	x := NewExtractor(src, dest)
	x.Drop, x.Log, x.Stats = m.Drop, m.log, m.stats
	if m.Enrich {
		sdb := m.StructureDB
		if sdb == "" {
			sdb = m.DestDB
		}
		sc, err := pool.Collection(sdb, m.StructureCollection)
		if err != nil {
			return res, errors.Wrap(err, "opening course structure")
		}
		x.Enricher = NewEnricher(structure.NewStore(sc))
	}
	return x.Migrate(conf.CourseIDs, conf.Start, conf.End)
}

func (m *Main) eventLog(pool *backend.Pool) (EventLog, func(), error) {
	nop := func() {}
	var src edxdk.Source
	switch m.Source {
	case SourceDB, "":
		c, err := pool.Collection(m.SourceDB, m.SourceCollection)
		if err != nil {
			return nil, nop, err
		}
		return &CollectionLog{C: c}, nop, nil
	case SourceFile:
		fs, err := file.NewSource(file.OptSrcPath(m.Path))
		if err != nil {
			return nil, nop, err
		}
		src = fs
	case SourceS3:
		ss, err := s3.NewSource(s3.OptSrcBucket(m.Bucket), s3.OptSrcRegion(m.Region), s3.OptSrcPrefix(m.Prefix))
		if err != nil {
			return nil, nop, err
		}
		src = ss
	case SourceKafka:
		ks, closer, err := m.kafkaSource()
		if err != nil {
			return nil, nop, err
		}
		src, nop = ks, closer
	default:
		return nil, nop, errors.Errorf("unknown source '%s'", m.Source)
	}
	sl := NewSourceLog(src)
	sl.Log = m.log
	return sl, nop, nil
}

func (m *Main) kafkaSource() (edxdk.Source, func(), error) {
	if m.MaxMsgs <= 0 {
		return nil, nil, errors.New("kafka source needs max-msgs to know when to stop")
	}
	ks := kafka.NewSource()
	if m.RegistryURL != "" {
		reg := kafka.NewRegistry(m.RegistryURL)
		reg.Log = m.log
		ks.Decoder = reg
	}
	ks.Hosts, ks.Topics, ks.Group, ks.MaxMsgs, ks.Log = m.KafkaHosts, m.Topics, m.Group, m.MaxMsgs, m.log
	if err := ks.Open(); err != nil {
		return nil, nil, err
	}
	return ks, func() {
		if err := ks.Close(); err != nil {
			m.log.Printf("%v", err)
		}
	}, nil
}
