package work

import (
	"bytes"
	"testing"
	"time"

	"github.com/Daskott/glucowatch/server/models"
	"github.com/stretchr/testify/assert"
)

func TestPerformIn(t *testing.T) {
	models.InitializeTestDb()

	workerPool := NewWorkerAdapter("UTC", true)
	outputBuffer := new(bytes.Buffer)
	outStr := outputBuffer.String()

	// Register job function
	writeToBuffer := func(m map[string]interface{}) error {
		_, err := outputBuffer.WriteString("Hello")
		return err
	}
	workerPool.Register("write_to_buffer", writeToBuffer)

	err := workerPool.PerformIn(2, JobParams{
		Name:    "write_to_buffer",
		Handler: "write_to_buffer",
		Args:    map[string]interface{}{},
	})
	assert.Nil(t, err)
	assert.Empty(t, outStr, "Expected outputBuffer to be empty")

	// Wait until time to perform job has elapsed
	time.Sleep(3 * time.Second)

	workerPool.Start()

	// Wait for job to be processed
	time.Sleep(2 * time.Second)

	workerPool.Stop()

	outStr = outputBuffer.String()
	assert.Equal(t, "Hello", outStr, "Expected job to write to outputBuffer")
}

func TestPerformUniqueJob(t *testing.T) {
	models.InitializeTestDb()

	workerPool := NewWorkerAdapter("UTC", true)
	workerPool.Register("send_reminder", func(m map[string]interface{}) error { return nil })

	job := JobParams{
		Name:    "send_reminder_42_2026-01-02_08:00",
		Handler: "send_reminder",
		Unique:  true,
		Args:    map[string]interface{}{"schedule_id": "42"},
	}

	err := workerPool.Perform(job)
	assert.Nil(t, err)

	// A second enqueue with the same unique name is swallowed - the dose
	// is only announced once
	err = workerPool.Perform(job)
	assert.Nil(t, err)

	lastJob, err := models.LastJob(models.ENQUEUED_JOB, false)
	assert.Nil(t, err)
	assert.Equal(t, job.Name, lastJob.Name)
	assert.Contains(t, lastJob.Args, "42", "Should contain the correct arg values")
}
