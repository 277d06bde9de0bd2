package dataset

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"crack-classifier/internal/domain/entity"
	"crack-classifier/internal/domain/port"
	"crack-classifier/internal/logger"
)

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

// Options разбиение и параллелизм загрузки
type Options struct {
	Seed           int64
	ValidationFrac float64
	TestFrac       float64
	Workers        int
}

// Folder датасет из каталогов Positive/ и Negative/
type Folder struct {
	root string
	pre  port.Preprocessor
	opts Options
}

var _ port.DatasetSource = (*Folder)(nil)

// NewFolder создаёт источник данных
func NewFolder(root string, pre port.Preprocessor, opts Options) *Folder {
	return &Folder{root: root, pre: pre, opts: opts}
}

type item struct {
	path  string
	class entity.Class
}

// Load читает все изображения, перемешивает и делит на выборки
func (f *Folder) Load(ctx context.Context) (*entity.Dataset, error) {
	if f.opts.ValidationFrac < 0 || f.opts.TestFrac < 0 || f.opts.ValidationFrac+f.opts.TestFrac >= 1 {
		return nil, fmt.Errorf("invalid split: validation %.2f, test %.2f", f.opts.ValidationFrac, f.opts.TestFrac)
	}

	var items []item
	for i, name := range entity.ClassNames {
		paths, err := listImages(filepath.Join(f.root, name))
		if err != nil {
			return nil, err
		}
		for _, p := range paths {
			items = append(items, item{path: p, class: entity.Class(i)})
		}
	}

	samples := make([]entity.LabeledSample, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, f.opts.Workers))
	for i, it := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := f.pre.Preprocess(it.path)
			if err != nil {
				return fmt.Errorf("preprocess %s: %w", it.path, err)
			}
			samples[i] = entity.LabeledSample{ID: it.path, Image: img, Label: entity.NewOneHot(it.class)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(f.opts.Seed))
	rng.Shuffle(len(samples), func(i, j int) { samples[i], samples[j] = samples[j], samples[i] })

	ds := split(samples, f.opts.ValidationFrac, f.opts.TestFrac)
	logger.Info(logger.Fields{
		"train":      len(ds.Train),
		"validation": len(ds.Validation),
		"test":       len(ds.Test),
	}, "dataset loaded")
	return ds, nil
}

// split отрезает тестовую выборку, затем валидационную, с начала списка.
// Доли считаются от полного размера.
func split(samples []entity.LabeledSample, valFrac, testFrac float64) *entity.Dataset {
	n := len(samples)
	nTest := int(math.Round(float64(n) * testFrac))
	nVal := int(math.Round(float64(n) * valFrac))

	return &entity.Dataset{
		Test:       samples[:nTest],
		Validation: samples[nTest : nTest+nVal],
		Train:      samples[nTest+nVal:],
	}
}

func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: class directory %s: %v", entity.ErrMissingImage, dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
