package simulator

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"reflect"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/chrisdamba/bagsim/internal/cloudwriter"
	"github.com/chrisdamba/bagsim/internal/models"
	"github.com/chrisdamba/bagsim/internal/simulator/producers"
)

// OutputDestination receives every event a run publishes.
type OutputDestination interface {
	WriteMessage(topic string, msg []byte) error
	Close() error
}

// NoopOutput discards events.
type NoopOutput struct{}

func (NoopOutput) WriteMessage(string, []byte) error { return nil }
func (NoopOutput) Close() error                      { return nil }

type ConsoleOutput struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsoleOutput(out io.Writer) *ConsoleOutput {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleOutput{out: out}
}

func (c *ConsoleOutput) WriteMessage(topic string, msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintf(c.out, "[%s] %s\n", topic, msg); err != nil {
		return fmt.Errorf("failed to write to console: %w", err)
	}
	return nil
}

func (c *ConsoleOutput) Close() error { return nil }

// partitionFor derives the run/day partition from a published event.
func partitionFor(msg []byte) (map[string]interface{}, string, error) {
	var event map[string]interface{}
	if err := json.Unmarshal(msg, &event); err != nil {
		return nil, "", err
	}
	runID, ok := event["runId"].(string)
	if !ok || runID == "" {
		return nil, "", errors.New("event has no runId")
	}
	day, ok := event["day"].(float64)
	if !ok {
		return nil, "", errors.New("event has no day")
	}
	return event, fmt.Sprintf("run=%s/day=%02d", runID, int(day)), nil
}

// partitionedFiles keeps one open file per topic and partition, laid out as
// <root>/<topic>/<partition>/<name>.
type partitionedFiles struct {
	root  string
	name  string
	files map[string]*os.File
}

func newPartitionedFiles(basePath, folder, name string) partitionedFiles {
	return partitionedFiles{
		root:  filepath.Join(basePath, folder),
		name:  name,
		files: make(map[string]*os.File),
	}
}

// open returns the file for topic and partition, creating it on first use.
// created is true only for a new file.
func (pf *partitionedFiles) open(topic, partition string) (f *os.File, created bool, err error) {
	key := path.Join(topic, partition)
	if f, ok := pf.files[key]; ok {
		return f, false, nil
	}
	dir := filepath.Join(pf.root, topic, filepath.FromSlash(partition))
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, false, err
	}
	f, err = os.Create(filepath.Join(dir, pf.name))
	if err != nil {
		return nil, false, err
	}
	pf.files[key] = f
	return f, true, nil
}

func (pf *partitionedFiles) closeAll() error {
	var errs []error
	for _, f := range pf.files {
		if err := f.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	pf.files = make(map[string]*os.File)
	return errors.Join(errs...)
}

// JSONOutput writes newline-delimited JSON per topic and partition.
type JSONOutput struct {
	mu    sync.Mutex
	files partitionedFiles
}

func NewJSONOutput(basePath, folder string) *JSONOutput {
	return &JSONOutput{files: newPartitionedFiles(basePath, folder, "data.json")}
}

func (j *JSONOutput) WriteMessage(topic string, msg []byte) error {
	_, partition, err := partitionFor(msg)
	if err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	f, _, err := j.files.open(topic, partition)
	if err != nil {
		return fmt.Errorf("failed to open json partition: %w", err)
	}
	line := make([]byte, 0, len(msg)+1)
	line = append(append(line, msg...), '\n')
	_, err = f.Write(line)
	return err
}

func (j *JSONOutput) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.files.closeAll()
}

// CSVOutput writes one CSV per topic and partition. The header is the sorted
// key set of the partition's first event.
type CSVOutput struct {
	mu      sync.Mutex
	files   partitionedFiles
	writers map[*os.File]*csvPartition
}

type csvPartition struct {
	w      *csv.Writer
	header []string
}

func NewCSVOutput(basePath, folder string) *CSVOutput {
	return &CSVOutput{
		files:   newPartitionedFiles(basePath, folder, "data.csv"),
		writers: make(map[*os.File]*csvPartition),
	}
}

func (c *CSVOutput) WriteMessage(topic string, msg []byte) error {
	event, partition, err := partitionFor(msg)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	f, created, err := c.files.open(topic, partition)
	if err != nil {
		return fmt.Errorf("failed to open csv partition: %w", err)
	}
	p := c.writers[f]
	if created {
		p = &csvPartition{w: csv.NewWriter(f), header: sortedKeys(event)}
		c.writers[f] = p
		if err := p.w.Write(p.header); err != nil {
			return err
		}
	}

	row := make([]string, len(p.header))
	for i, key := range p.header {
		if v, ok := event[key]; ok {
			row[i] = fmt.Sprint(v)
		}
	}
	if err := p.w.Write(row); err != nil {
		return err
	}
	p.w.Flush()
	return p.w.Error()
}

func sortedKeys(event map[string]interface{}) []string {
	keys := make([]string, 0, len(event))
	for k := range event {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c *CSVOutput) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var errs []error
	for _, p := range c.writers {
		p.w.Flush()
		if err := p.w.Error(); err != nil {
			errs = append(errs, err)
		}
	}
	c.writers = make(map[*os.File]*csvPartition)
	errs = append(errs, c.files.closeAll())
	return errors.Join(errs...)
}

// ParquetOutput writes typed events as parquet, locally or to cloud storage
// when a writer factory is given.
type ParquetOutput struct {
	mu         sync.Mutex
	root       string
	folder     string
	bucket     string
	factory    cloudwriter.CloudWriterFactory
	partitions map[string]*parquetPartition
}

type parquetPartition struct {
	file source.ParquetFile
	pw   *writer.ParquetWriter
}

func NewParquetOutput(cfg *models.Config, factory cloudwriter.CloudWriterFactory) *ParquetOutput {
	return &ParquetOutput{
		root:       filepath.Join(cfg.OutputPath, cfg.OutputFolder),
		folder:     cfg.OutputFolder,
		bucket:     cfg.CloudStorage.BucketName,
		factory:    factory,
		partitions: make(map[string]*parquetPartition),
	}
}

func (p *ParquetOutput) WriteMessage(topic string, msg []byte) error {
	_, partition, err := partitionFor(msg)
	if err != nil {
		return err
	}
	ev, err := decodeEvent(topic, msg)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	key := path.Join(topic, partition)
	part, ok := p.partitions[key]
	if !ok {
		part, err = p.openPartition(topic, partition)
		if err != nil {
			return fmt.Errorf("failed to open parquet partition %s: %w", key, err)
		}
		p.partitions[key] = part
	}

	// parquet-go marshals struct values
	if err := part.pw.Write(reflect.Indirect(reflect.ValueOf(ev)).Interface()); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

func (p *ParquetOutput) openPartition(topic, partition string) (*parquetPartition, error) {
	sh, err := GetSchema(topic)
	if err != nil {
		return nil, err
	}
	file, err := p.createFile(topic, partition)
	if err != nil {
		return nil, err
	}
	pw, err := writer.NewParquetWriter(file, nil, 4)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to create ParquetWriter: %w", err)
	}
	pw.SchemaHandler = sh
	return &parquetPartition{file: file, pw: pw}, nil
}

func (p *ParquetOutput) createFile(topic, partition string) (source.ParquetFile, error) {
	if p.factory != nil {
		objectPath := path.Join(p.folder, topic, partition, "data.parquet")
		cw, err := p.factory.NewWriter(p.bucket, objectPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud file writer: %w", err)
		}
		return &cloudParquetFile{w: cw}, nil
	}

	dir := filepath.Join(p.root, topic, filepath.FromSlash(partition))
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, err
	}
	return local.NewLocalFileWriter(filepath.Join(dir, "data.parquet"))
}

func (p *ParquetOutput) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for key, part := range p.partitions {
		if err := part.pw.WriteStop(); err != nil {
			logrus.WithError(err).WithField("partition", key).Warn("error finishing parquet writer")
			errs = append(errs, err)
		}
		if err := part.file.Close(); err != nil {
			logrus.WithError(err).WithField("partition", key).Warn("error closing parquet file")
			errs = append(errs, err)
		}
	}
	p.partitions = make(map[string]*parquetPartition)
	return errors.Join(errs...)
}

// cloudParquetFile lets parquet-go stream into a CloudWriter. Only
// sequential writes are supported.
type cloudParquetFile struct {
	w      cloudwriter.CloudWriter
	offset int64
}

func (c *cloudParquetFile) Open(string) (source.ParquetFile, error)   { return c, nil }
func (c *cloudParquetFile) Create(string) (source.ParquetFile, error) { return c, nil }

func (c *cloudParquetFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		c.offset = offset
	case io.SeekCurrent:
		c.offset += offset
	default:
		return 0, errors.New("cloud parquet file cannot seek from end")
	}
	return c.offset, nil
}

func (c *cloudParquetFile) Read([]byte) (int, error) {
	return 0, errors.New("cloud parquet file is write-only")
}

func (c *cloudParquetFile) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.offset += int64(n)
	return n, err
}

func (c *cloudParquetFile) Close() error {
	return c.w.Close()
}

// CleanupParquet removes parquet files left in the output folder by earlier
// runs.
func CleanupParquet(basePath, folder string) error {
	fullPath := filepath.Join(basePath, folder)
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return nil
	}
	return filepath.Walk(fullPath, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(p) == ".parquet" {
			return os.Remove(p)
		}
		return nil
	})
}

// NewOutputDestination builds the sink configured by output_format. Each run
// gets its own sink.
func NewOutputDestination(ctx context.Context, cfg *models.Config) (OutputDestination, error) {
	switch cfg.OutputFormat {
	case "", models.OutputNone:
		return NoopOutput{}, nil
	case models.OutputConsole:
		return NewConsoleOutput(os.Stdout), nil
	case models.OutputJSON:
		return NewJSONOutput(cfg.OutputPath, cfg.OutputFolder), nil
	case models.OutputCSV:
		return NewCSVOutput(cfg.OutputPath, cfg.OutputFolder), nil
	case models.OutputParquet:
		var factory cloudwriter.CloudWriterFactory
		if cfg.OutputDestination == models.DestinationS3 {
			f, err := NewCloudWriterFactory(ctx, cfg)
			if err != nil {
				return nil, err
			}
			factory = f
		}
		return NewParquetOutput(cfg, factory), nil
	case models.OutputKafka:
		producer, err := producers.NewSaramaProducer(cfg)
		if err != nil {
			return nil, err
		}
		return producer, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", cfg.OutputFormat)
	}
}

// NewCloudWriterFactory returns the writer factory for the configured cloud
// provider.
func NewCloudWriterFactory(ctx context.Context, cfg *models.Config) (cloudwriter.CloudWriterFactory, error) {
	switch cfg.CloudStorage.Provider {
	case "", "s3":
		factory, err := cloudwriter.NewS3WriterFactory(ctx, cfg.CloudStorage.Region)
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud writer factory: %w", err)
		}
		return factory, nil
	default:
		return nil, fmt.Errorf("unsupported cloud storage provider: %s", cfg.CloudStorage.Provider)
	}
}
