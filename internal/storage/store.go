// Package storage keeps a manifest per recording run: metadata.json plus an
// episodes.csv row for every written episode file.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string    `json:"id"`
	Model       string    `json:"model"`
	Timestamp   time.Time `json:"timestamp"`
	Backend     string    `json:"backend"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	Duration    float64   `json:"duration"`
	FPS         float64   `json:"fps"`
	Repetitions float64   `json:"repetitions"`
	Episodes    int       `json:"episodes"`
	SeedMode    string    `json:"seed_mode"`
	Seed        int64     `json:"seed,omitempty"`
	OutputDir   string    `json:"output_dir"`
	Scenario    string    `json:"scenario,omitempty"`
}

type EpisodeRecord struct {
	Index         int
	Label         int
	File          string
	Seed          int64
	Slope         float64
	TargetX       float64
	TargetY       float64
	CueX          float64
	CueY          float64
	VelocityX     float64
	VelocityY     float64
	Frames        int
	Bytes         int64
	FirstCapture  float64
	LastCapture   float64
	MinSeparation float64
	Contacts      float64
	FinalSpeed    float64
}

var episodeHeader = []string{
	"index", "label", "file", "seed", "slope", "target_x", "target_y", "cue_x", "cue_y",
	"velocity_x", "velocity_y", "frames", "bytes", "first_capture", "last_capture",
	"min_separation", "contacts", "final_speed",
}

func runID(model string, ts time.Time) string {
	base := strings.TrimSuffix(filepath.Base(model), filepath.Ext(model))
	if base == "" || base == "." {
		base = "run"
	}
	return fmt.Sprintf("%s_%d", base, ts.UnixMilli())
}

// Save writes the manifest of one run and returns its id.
func (s *Store) Save(meta RunMetadata, episodes []EpisodeRecord) (string, error) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	if meta.ID == "" {
		meta.ID = runID(meta.Model, meta.Timestamp)
	}
	meta.Episodes = len(episodes)

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "episodes.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write(episodeHeader); err != nil {
		return "", err
	}
	for _, e := range episodes {
		if err := w.Write(e.row()); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return meta.ID, nil
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func (e EpisodeRecord) row() []string {
	return []string{
		strconv.Itoa(e.Index),
		strconv.Itoa(e.Label),
		e.File,
		strconv.FormatInt(e.Seed, 10),
		ftoa(e.Slope),
		ftoa(e.TargetX),
		ftoa(e.TargetY),
		ftoa(e.CueX),
		ftoa(e.CueY),
		ftoa(e.VelocityX),
		ftoa(e.VelocityY),
		strconv.Itoa(e.Frames),
		strconv.FormatInt(e.Bytes, 10),
		ftoa(e.FirstCapture),
		ftoa(e.LastCapture),
		ftoa(e.MinSeparation),
		ftoa(e.Contacts),
		ftoa(e.FinalSpeed),
	}
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadEpisodes(runID string) ([]EpisodeRecord, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "episodes.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(episodeHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []EpisodeRecord{}, nil
	}

	episodes := make([]EpisodeRecord, 0, len(records)-1)
	for line, rec := range records[1:] {
		e, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("episodes.csv line %d: %w", line+2, err)
		}
		episodes = append(episodes, e)
	}
	return episodes, nil
}

type fieldParser struct {
	rec []string
	err error
}

func (p *fieldParser) float(i int) float64 {
	if p.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(p.rec[i], 64)
	if err != nil {
		p.err = fmt.Errorf("%s: %w", episodeHeader[i], err)
	}
	return v
}

func (p *fieldParser) int(i int) int64 {
	if p.err != nil {
		return 0
	}
	v, err := strconv.ParseInt(p.rec[i], 10, 64)
	if err != nil {
		p.err = fmt.Errorf("%s: %w", episodeHeader[i], err)
	}
	return v
}

func parseRecord(rec []string) (EpisodeRecord, error) {
	p := &fieldParser{rec: rec}
	e := EpisodeRecord{
		Index:         int(p.int(0)),
		Label:         int(p.int(1)),
		File:          rec[2],
		Seed:          p.int(3),
		Slope:         p.float(4),
		TargetX:       p.float(5),
		TargetY:       p.float(6),
		CueX:          p.float(7),
		CueY:          p.float(8),
		VelocityX:     p.float(9),
		VelocityY:     p.float(10),
		Frames:        int(p.int(11)),
		Bytes:         p.int(12),
		FirstCapture:  p.float(13),
		LastCapture:   p.float(14),
		MinSeparation: p.float(15),
		Contacts:      p.float(16),
		FinalSpeed:    p.float(17),
	}
	return e, p.err
}
