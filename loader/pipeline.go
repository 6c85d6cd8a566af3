// Package loader populates a system under test with the initial TPC-C
// database.
package loader

import (
	"context"
	"sync"
	"time"

	"github.com/hhkbp2/tpccbench/log"
	"github.com/hhkbp2/tpccbench/model"
	"github.com/hhkbp2/tpccbench/sut"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// LoadItems loads the whole item catalog through a single loader session.
func LoadItems(ctx context.Context, s sut.Sut) error {
	l, err := s.Loader(ctx)
	if err != nil {
		return errors.Wrap(err, "open item loader")
	}
	defer l.Close()
	for _, gen := range model.NewItemGenerators() {
		if err := l.LoadItems(ctx, gen); err != nil {
			return err
		}
	}
	return nil
}

// LoadWarehouses streams warehouses 1..count from one producer to exactly
// monkeys loader sessions. After the first failure the producer stops feeding
// and the other sessions finish the warehouse they are loading.
func LoadWarehouses(ctx context.Context, s sut.Sut, count int64, monkeys int) error {
	if monkeys <= 0 {
		return errors.Errorf("invalid loader parallelism: %d", monkeys)
	}
	var group errgroup.Group
	var once sync.Once
	failed := make(chan struct{})
	ch := make(chan *model.Warehouse)
	group.Go(func() error {
		defer close(ch)
		gen := model.NewWarehouseGenerator(count)
		for {
			w, ok := gen.Next()
			if !ok {
				return nil
			}
			select {
			case ch <- w:
			case <-failed:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})
	for i := 0; i < monkeys; i++ {
		id := i
		group.Go(func() error {
			err := consume(ctx, s, id, ch)
			if err != nil {
				once.Do(func() { close(failed) })
			}
			return err
		})
	}
	return group.Wait()
}

func consume(ctx context.Context, s sut.Sut, id int, ch <-chan *model.Warehouse) error {
	l, err := s.Loader(ctx)
	if err != nil {
		return errors.Wrapf(err, "open loader %d", id)
	}
	defer l.Close()
	return l.LoadWarehouses(ctx, ch)
}

// Drain calls load for every warehouse received until the channel is closed
// or the context is done.
func Drain(ctx context.Context, warehouses <-chan *model.Warehouse, load func(context.Context, *model.Warehouse) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case w, ok := <-warehouses:
			if !ok {
				return nil
			}
			if err := load(ctx, w); err != nil {
				return err
			}
		}
	}
}

// Build creates the schema, loads items and warehouses, then runs the
// post-load step once everything is in.
func Build(ctx context.Context, s sut.Sut, warehouses int64, monkeys int) error {
	start := time.Now()
	log.Infof("Building schema")
	if err := s.BuildSchema(ctx); err != nil {
		return errors.Wrap(err, "build schema")
	}
	if err := LoadItems(ctx, s); err != nil {
		return err
	}
	log.Infof("Loading %d warehouses with %d loaders", warehouses, monkeys)
	if err := LoadWarehouses(ctx, s, warehouses, monkeys); err != nil {
		return err
	}
	log.Infof("Running post-load step")
	if err := s.AfterLoaded(ctx); err != nil {
		return errors.Wrap(err, "after loaded")
	}
	log.Infof("Build finished in %s", time.Since(start))
	return nil
}
