package rpc

import (
	"ixichain/block"
	"ixichain/db"
	"ixichain/ec"

	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStoreWithBlock(t *testing.T) *block.Store {
	t.Helper()
	store := block.NewStore(db.NewMemDb())

	ca := ec.RsaAdapter{}
	b := block.NewBlock(5, 1)
	b.AddTransaction("tx-a")
	b.BlockChecksum = b.CalculateChecksum(ca)
	store.SaveBlock(b)
	return store
}

func TestBlockHandlerFound(t *testing.T) {
	store := newTestStoreWithBlock(t)

	req := httptest.NewRequest(http.MethodGet, "/block/1", nil)
	req = mux.SetURLVars(req, map[string]string{"num": "1"})

	result, rpcErr := BlockHandler{Store: store}.Handle(req)
	require.Nil(t, rpcErr)
	m := result.(map[string]interface{})
	assert.EqualValues(t, 1, m["blockNum"])
}

func TestBlockHandlerNotFound(t *testing.T) {
	store := block.NewStore(db.NewMemDb())

	req := httptest.NewRequest(http.MethodGet, "/block/9", nil)
	req = mux.SetURLVars(req, map[string]string{"num": "9"})

	_, rpcErr := BlockHandler{Store: store}.Handle(req)
	require.NotNil(t, rpcErr)
	assert.Equal(t, http.StatusNotFound, rpcErr.Code)
}

func TestBlockHandlerInvalidNum(t *testing.T) {
	store := block.NewStore(db.NewMemDb())

	req := httptest.NewRequest(http.MethodGet, "/block/abc", nil)
	req = mux.SetURLVars(req, map[string]string{"num": "abc"})

	_, rpcErr := BlockHandler{Store: store}.Handle(req)
	require.NotNil(t, rpcErr)
	assert.Equal(t, http.StatusBadRequest, rpcErr.Code)
}

func TestHeightHandler(t *testing.T) {
	store := newTestStoreWithBlock(t)

	result, rpcErr := HeightHandler{Store: store}.Handle(httptest.NewRequest(http.MethodGet, "/height", nil))
	require.Nil(t, rpcErr)
	m := result.(map[string]interface{})
	assert.EqualValues(t, 1, m["height"])
}

func TestVersionHandler(t *testing.T) {
	result, rpcErr := VersionHandler{}.Handle(httptest.NewRequest(http.MethodGet, "/version", nil))
	require.Nil(t, rpcErr)
	m := result.(map[string]interface{})
	assert.NotEmpty(t, m["version"])
}
