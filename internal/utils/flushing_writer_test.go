package utils_test

import (
	"bufio"
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/pageaudit/internal/utils"
)

func TestFlushingWriterFlushesBufferedSinks(testInstance *testing.T) {
	var destination bytes.Buffer
	bufferedWriter := bufio.NewWriter(&destination)

	writer := utils.NewFlushingWriter(bufferedWriter)
	_, writeError := writer.Write([]byte("Status: PASS\n"))
	require.NoError(testInstance, writeError)
	require.Equal(testInstance, "Status: PASS\n", destination.String())

	require.Same(testInstance, writer, utils.NewFlushingWriter(writer))
	require.Nil(testInstance, utils.NewFlushingWriter(nil))
}

func TestFlushingWriterSerializesConcurrentWrites(testInstance *testing.T) {
	var destination bytes.Buffer
	writer := utils.NewFlushingWriter(&destination)

	const writerCount = 16
	var waitGroup sync.WaitGroup
	for index := 0; index < writerCount; index++ {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			_, _ = writer.Write([]byte("report\n"))
		}()
	}
	waitGroup.Wait()

	require.Equal(testInstance, writerCount, bytes.Count(destination.Bytes(), []byte("report\n")))
}
