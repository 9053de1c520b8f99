package store

import "sync"

// SharedBlob holds the single text value behind /api/save and /api/get.
// Every Save fully replaces the previous value.
type SharedBlob struct {
	mu   sync.Mutex
	data string
}

// constructor for SharedBlob, value starts empty
func NewSharedBlob() *SharedBlob {
	return &SharedBlob{}
}

func (b *SharedBlob) Save(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = text
}

func (b *SharedBlob) Get() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.data
}
