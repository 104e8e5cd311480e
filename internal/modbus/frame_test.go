package modbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameEncodeDecodeRoundTrip(t *testing.T) {
	req := ReadHoldingRegistersRequest(0x1234, 1, 100, 2)
	raw := req.Encode()

	decoded, err := DecodeFrame(raw)
	require.NoError(t, err)

	assert.Equal(t, uint16(0x1234), decoded.TransactionID)
	assert.Equal(t, uint16(0x0000), decoded.ProtocolID)
	assert.Equal(t, uint8(1), decoded.UnitID)
	assert.Equal(t, uint8(FuncCodeReadHoldingRegisters), decoded.FunctionCode)
	assert.Equal(t, []byte{0x00, 0x64, 0x00, 0x02}, decoded.Data)
	assert.Equal(t, uint16(6), decoded.Length)
}

func TestWriteSingleCoilRequestWireValues(t *testing.T) {
	on := WriteSingleCoilRequest(1, 1, 0x0003, true)
	assert.Equal(t, []byte{0x00, 0x03, 0xFF, 0x00}, on.Data)
	assert.Equal(t, uint8(FuncCodeWriteSingleCoil), on.FunctionCode)

	off := WriteSingleCoilRequest(1, 1, 0x0003, false)
	assert.Equal(t, []byte{0x00, 0x03, 0x00, 0x00}, off.Data)
}

func TestWriteSingleRegisterRequest(t *testing.T) {
	req := WriteSingleRegisterRequest(7, 2, 110, 5000)
	assert.Equal(t, uint8(FuncCodeWriteSingleRegister), req.FunctionCode)
	assert.Equal(t, uint8(2), req.UnitID)
	assert.Equal(t, []byte{0x00, 0x6E, 0x13, 0x88}, req.Data)
}

func TestDecodeFrameErrors(t *testing.T) {
	_, err := DecodeFrame([]byte{0x00, 0x01, 0x00, 0x00})
	assert.Error(t, err)

	// non-zero protocol ID is not Modbus
	bad := &Frame{TransactionID: 1, ProtocolID: 0xDEAD, UnitID: 1, FunctionCode: 0x03}
	_, err = DecodeFrame(bad.Encode())
	assert.Error(t, err)
}

func TestExceptionResponse(t *testing.T) {
	resp := &Frame{
		TransactionID: 1,
		UnitID:        1,
		FunctionCode:  FuncCodeWriteSingleRegister | 0x80,
		Data:          []byte{0x02}, // illegal data address
	}

	assert.True(t, resp.IsException())
	assert.Equal(t, uint8(0x02), resp.ExceptionCode())

	ok := &Frame{FunctionCode: FuncCodeWriteSingleRegister}
	assert.False(t, ok.IsException())
	assert.Equal(t, uint8(0), ok.ExceptionCode())
}

func TestParseRegisterResponse(t *testing.T) {
	resp := &Frame{
		FunctionCode: FuncCodeReadHoldingRegisters,
		Data:         []byte{0x04, 0x12, 0x34, 0xAB, 0xCD},
	}

	regs, err := resp.ParseRegisterResponse()
	require.NoError(t, err)
	require.Len(t, regs, 2)
	assert.Equal(t, uint16(0x1234), regs[0])
	assert.Equal(t, uint16(0xABCD), regs[1])

	short := &Frame{Data: []byte{0x04, 0x12}}
	_, err = short.ParseRegisterResponse()
	assert.Error(t, err)

	empty := &Frame{}
	_, err = empty.ParseRegisterResponse()
	assert.Error(t, err)
}
