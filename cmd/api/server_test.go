package main

import (
	"context"
	"net"
	"net/http"
	"ratemovie/proj/internal/api/tasks"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdownDrainsTasksWhenServerTimesOut(t *testing.T) {
	app := NewTestApplication(t)
	app.bgTasks = tasks.New(app.log, 1, 4)
	app.bgTasks.Run()
	var ran atomic.Int32
	for i := 0; i < 3; i++ {
		app.bgTasks.Add(tasks.Task{Name: "count", Run: func(ctx context.Context) error {
			ran.Add(1)
			return nil
		}})
	}

	release := make(chan struct{})
	defer close(release)
	entered := make(chan struct{})
	server := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
	})}
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go server.Serve(listener)
	go http.Get("http://" + listener.Addr().String())
	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err = app.shutdown(ctx, server)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.EqualValues(t, 3, ran.Load())
	assert.True(t, app.bgTasks.IsEmpty())
}
