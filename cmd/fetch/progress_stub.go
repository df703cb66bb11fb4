//go:build no_bubbletea

package fetch

import "context"

type FetchProgress struct{}

func NewFetchProgress(ctx context.Context) *FetchProgress {
	return &FetchProgress{}
}

func (fp *FetchProgress) Start()                                {}
func (fp *FetchProgress) Update(name string, done, total int64) {}
func (fp *FetchProgress) SetError(err error)                    {}
func (fp *FetchProgress) Done()                                 {}
func (fp *FetchProgress) Wait()                                 {}
