package rpc

import (
	"ixichain/block"
	"ixichain/version"

	"encoding/hex"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// BlockHandler answers GET /block/{num} with the hex-encoded wire
// form of the stored block (spec.md §4.6 Bytes()), or a 404-shaped
// RpcError when the block is unknown.
type BlockHandler struct {
	Store *block.Store
}

func (h BlockHandler) Handle(req *http.Request) (interface{}, *RpcError) {
	numStr := mux.Vars(req)["num"]
	blockNum, err := strconv.ParseUint(numStr, 10, 64)
	if err != nil {
		return nil, &RpcError{Code: http.StatusBadRequest, Message: "invalid block number"}
	}

	b := h.Store.LoadBlockByNum(blockNum)
	if b == nil {
		return nil, &RpcError{Code: http.StatusNotFound, Message: block.ErrUnknownBlock{BlockNum: blockNum}.Error()}
	}

	return map[string]interface{}{
		"version":  b.Version,
		"blockNum": b.BlockNum,
		"checksum": hex.EncodeToString(b.BlockChecksum),
		"payload":  hex.EncodeToString(b.Bytes()),
	}, nil
}

// HeightHandler answers GET /height with the store's last known
// contiguous block number.
type HeightHandler struct {
	Store *block.Store
}

func (h HeightHandler) Handle(req *http.Request) (interface{}, *RpcError) {
	return map[string]interface{}{"height": h.Store.Height()}, nil
}

// VersionHandler answers GET /version with the node software version.
type VersionHandler struct{}

func (VersionHandler) Handle(req *http.Request) (interface{}, *RpcError) {
	return map[string]interface{}{"version": version.Version}, nil
}
