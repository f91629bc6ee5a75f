package systems

import (
	"runtime"
	"sync"
)

// parallelThreshold is the minimum number of missing chunks to fan out.
// Below this, inline generation is faster than dispatch.
const parallelThreshold = 4

// genJob is a range of coordinates for a worker to generate.
type genJob struct {
	start, end int
}

// chunkPool generates chunks on persistent worker goroutines.
// Workers read coords and write only their own results slots; the caller
// reads results after every dispatched job has reported done.
type chunkPool struct {
	gen        *chunkGenerator
	numWorkers int
	coords     []ChunkCoord
	results    []*Chunk

	workChan chan genJob
	doneChan chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
}

func newChunkPool(gen *chunkGenerator, workers int) *chunkPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &chunkPool{
		gen:        gen,
		numWorkers: workers,
	}
}

// start launches the worker goroutines.
func (p *chunkPool) start() {
	if p.running {
		return
	}
	p.workChan = make(chan genJob, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// stop signals all workers to exit and waits for them.
func (p *chunkPool) stop() {
	if !p.running {
		return
	}
	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

func (p *chunkPool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopChan:
			return
		case job, ok := <-p.workChan:
			if !ok {
				return
			}
			for i := job.start; i < job.end; i++ {
				p.results[i] = p.gen.generate(p.coords[i])
			}
			p.doneChan <- struct{}{}
		}
	}
}

// generate builds one chunk per coordinate, in order. The returned slice is
// reused by the next call.
func (p *chunkPool) generate(coords []ChunkCoord) []*Chunk {
	n := len(coords)
	if cap(p.results) < n {
		p.results = make([]*Chunk, n)
	}
	p.results = p.results[:n]
	p.coords = coords
	if n == 0 {
		return p.results
	}

	if n < parallelThreshold || p.numWorkers <= 1 {
		for i, c := range coords {
			p.results[i] = p.gen.generate(c)
		}
		return p.results
	}

	p.start()

	size := (n + p.numWorkers - 1) / p.numWorkers
	dispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * size
		end := min(start+size, n)
		if start >= end {
			continue
		}
		p.workChan <- genJob{start: start, end: end}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-p.doneChan
	}
	return p.results
}
