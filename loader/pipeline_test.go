package loader

import (
	"context"
	"github.com/hhkbp2/testify/require"
	"github.com/hhkbp2/tpccbench/model"
	"github.com/hhkbp2/tpccbench/sut"
	"github.com/pkg/errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeSut struct {
	lock        sync.Mutex
	loaders     int
	loaded      map[int64]int
	items       int64
	failOn      int64
	slowOn      int64
	canceled    int32
	completed   int32
	steps       []string
	afterLoaded bool
}

func newFakeSut() *fakeSut {
	return &fakeSut{loaded: make(map[int64]int)}
}

func (self *fakeSut) step(name string) {
	self.lock.Lock()
	defer self.lock.Unlock()
	self.steps = append(self.steps, name)
}

func (self *fakeSut) Terminal(context.Context, int) (sut.Terminal, error) {
	return nil, errors.New("not a terminal")
}

func (self *fakeSut) BuildSchema(context.Context) error {
	self.step("schema")
	return nil
}

func (self *fakeSut) AfterLoaded(context.Context) error {
	self.step("after")
	self.afterLoaded = true
	return nil
}

func (self *fakeSut) DestroySchema(context.Context) error {
	return nil
}

func (self *fakeSut) Loader(context.Context) (sut.Loader, error) {
	self.lock.Lock()
	defer self.lock.Unlock()
	self.loaders++
	return &fakeLoader{s: self}, nil
}

func (self *fakeSut) Close() error {
	return nil
}

type fakeLoader struct {
	s *fakeSut
}

func (self *fakeLoader) LoadItems(_ context.Context, items *model.ItemGenerator) error {
	self.s.step("items")
	for {
		if _, ok := items.Next(); !ok {
			return nil
		}
		self.s.lock.Lock()
		self.s.items++
		self.s.lock.Unlock()
	}
}

func (self *fakeLoader) LoadWarehouses(ctx context.Context, warehouses <-chan *model.Warehouse) error {
	return Drain(ctx, warehouses, func(ctx context.Context, w *model.Warehouse) error {
		if w.ID == self.s.failOn {
			if self.s.slowOn != 0 {
				time.Sleep(20 * time.Millisecond)
			}
			return errBoom
		}
		if w.ID == self.s.slowOn {
			select {
			case <-ctx.Done():
				atomic.AddInt32(&self.s.canceled, 1)
				return ctx.Err()
			case <-time.After(200 * time.Millisecond):
				atomic.AddInt32(&self.s.completed, 1)
			}
		}
		self.s.lock.Lock()
		defer self.s.lock.Unlock()
		self.s.loaded[w.ID]++
		return nil
	})
}

func (self *fakeLoader) Close() error {
	return nil
}

func TestLoadWarehousesPipeline(t *testing.T) {
	s := newFakeSut()
	err := LoadWarehouses(context.Background(), s, 20, 3)
	require.Nil(t, err)
	require.Equal(t, 3, s.loaders)
	require.Equal(t, 20, len(s.loaded))
	for id := int64(1); id <= 20; id++ {
		require.Equal(t, 1, s.loaded[id])
	}
}

func TestLoadWarehousesFailure(t *testing.T) {
	s := newFakeSut()
	s.failOn = 5
	err := LoadWarehouses(context.Background(), s, 20, 2)
	require.Equal(t, errBoom, errors.Cause(err))
}

func TestLoadWarehousesFailureLetsOthersFinish(t *testing.T) {
	s := newFakeSut()
	s.slowOn = 1
	s.failOn = 2
	err := LoadWarehouses(context.Background(), s, 20, 2)
	require.Equal(t, errBoom, errors.Cause(err))
	require.Equal(t, int32(0), atomic.LoadInt32(&s.canceled))
	require.Equal(t, int32(1), atomic.LoadInt32(&s.completed))
	// nothing is handed out once a loader failed
	require.Equal(t, 1, len(s.loaded))
	require.Equal(t, 1, s.loaded[1])
}

func TestBuild(t *testing.T) {
	s := newFakeSut()
	require.Nil(t, Build(context.Background(), s, 2, 2))
	require.Equal(t, []string{"schema", "items", "items", "after"}, s.steps)
	require.Equal(t, int64(model.ItemCount), s.items)
	require.Equal(t, 2, len(s.loaded))
}

func TestBuildSkipsAfterLoadedOnFailure(t *testing.T) {
	s := newFakeSut()
	s.failOn = 1
	err := Build(context.Background(), s, 3, 1)
	require.NotNil(t, err)
	require.False(t, s.afterLoaded)
}

func TestInvalidParallelism(t *testing.T) {
	require.NotNil(t, LoadWarehouses(context.Background(), newFakeSut(), 1, 0))
}
