// bulk floods a pool-server with jobs to measure submission and drain
// throughput.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/semaphore"

	"github.com/poolq/pool-server/api"
)

var addr string
var poolName string
var conc int64
var numJobs int
var workers int
var shutdown bool

func main() {
	pflag.StringVarP(&addr, "address", "a", "localhost:56400", "pool server address")
	pflag.StringVarP(&poolName, "pool", "p", "bulk", "pool name")
	pflag.Int64VarP(&conc, "concurrency", "", 250, "max concurrent submit requests")
	pflag.IntVarP(&numJobs, "jobs", "", 1000, "number of jobs to submit")
	pflag.IntVarP(&workers, "workers", "", 8, "pool worker count")
	pflag.BoolVarP(&shutdown, "shutdown", "", false, "shut the pool down after the drain")
	pflag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := post(ctx, "/pools", &api.CreatePoolRequest{Name: poolName, Workers: workers}, nil)
	if err != nil {
		panic(err)
	}
	wg := &sync.WaitGroup{}
	wg.Add(numJobs)
	sem := semaphore.NewWeighted(conc)
	now := time.Now()
	for i := 0; i < numJobs; i++ {
		err = sem.Acquire(ctx, 1)
		if err != nil {
			panic(err)
		}
		go func(i int) {
			defer wg.Done()
			defer sem.Release(1)
			err := post(ctx, "/pools/"+poolName+"/jobs", &api.SubmitJobRequest{
				Command: []string{"echo", strconv.Itoa(i)},
			}, new(api.SubmitJobResponse))
			if err != nil {
				fmt.Printf("job %d: %v\n", i, err)
			}
		}(i)
	}
	wg.Wait()
	fmt.Printf("submitted %d jobs in %s\n", numJobs, time.Since(now))

	err = post(ctx, "/pools/"+poolName+"/wait", nil, nil)
	if err != nil {
		panic(err)
	}
	fmt.Printf("drained after %s\n", time.Since(now))

	if shutdown {
		req, err := http.NewRequestWithContext(ctx, http.MethodDelete, "http://"+addr+"/pools/"+poolName, nil)
		if err != nil {
			panic(err)
		}
		rsp, err := http.DefaultClient.Do(req)
		if err != nil {
			panic(err)
		}
		defer rsp.Body.Close()
		fmt.Printf("shutdown status %s after %s\n", rsp.Status, time.Since(now))
	}
}

func post(ctx context.Context, path string, in, out interface{}) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://"+addr+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	rsp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer rsp.Body.Close()
	if rsp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %q", rsp.Status)
	}
	if out != nil {
		return json.NewDecoder(rsp.Body).Decode(out)
	}
	return nil
}
