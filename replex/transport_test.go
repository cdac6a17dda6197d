package replex

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoopTransportAlwaysReturnsErrNoPeer(t *testing.T) {
	var tr Transport = NoopTransport{}
	_, err := tr.RequestExchange(context.Background(), ExchangeInfo{ReplicaID: "a"})
	assert.True(t, errors.Is(err, ErrNoPeer))
	assert.NoError(t, tr.Close())
}
