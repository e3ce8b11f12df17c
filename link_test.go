package main

import (
	"errors"
	"testing"
)

func TestWriteCommand(t *testing.T) {
	port := &fakePort{}
	port.queue(ackEcho())

	acked, err := writeCommand(port, 0x1234)
	if err != nil {
		t.Fatalf("writeCommand() unexpected error: %v", err)
	}
	if acked != commandLength {
		t.Errorf("acked byte index = %d, want %d", acked, commandLength)
	}

	write := port.writes[0]
	want := [4]byte{i2cWriteControl, i2cWriteAddress, 0x12, 0x34}
	for i, b := range want {
		if write.Bytes[i] != b {
			t.Errorf("write frame byte %d = 0x%02X, want 0x%02X", i, write.Bytes[i], b)
		}
	}
}

func TestWriteCommandNack(t *testing.T) {
	port := &fakePort{}
	port.queue(nackEcho())

	_, err := writeCommand(port, 0x1234)
	if !IsNack(err) {
		t.Fatalf("writeCommand() error = %v, want NACK", err)
	}

	var nack *NackError
	if !errors.As(err, &nack) {
		t.Fatal("error must be a *NackError")
	}
	if nack.Addr != i2cWriteAddress>>1 {
		t.Errorf("NACK address = %d, want %d", nack.Addr, i2cWriteAddress>>1)
	}
}

// A NACKed read still hands the raw frame to the caller.
func TestReadResponseNackReturnsFrame(t *testing.T) {
	port := &fakePort{}
	resp := nackRead()
	resp.Bytes[1] = 0x42
	port.queue(resp)

	got, err := readResponse(port, 3)
	if !IsNack(err) {
		t.Fatalf("readResponse() error = %v, want NACK", err)
	}
	if got.Bytes[1] != 0x42 {
		t.Errorf("NACKed frame not returned, got %+v", got)
	}

	request := port.writes[0]
	if request.ID != reportI2CRead || request.Bytes[0] != 3 || request.Bytes[1] != i2cReadAddress {
		t.Errorf("unexpected read request frame %+v", request)
	}
}
