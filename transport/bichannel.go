package transport

import "io"

// BiChannel is a generic framed typed channel over one logical
// bidirectional stream, per spec.md §4.9, grounded on
// original_source/src/bi_channel.rs's BiChannel<Message>.
type BiChannel[M any] struct {
	send io.WriteCloser
	recv io.ReadCloser
}

// OpenBiChannel opens a new logical stream on conn and wraps it as a
// typed, framed channel carrying values of type M.
func OpenBiChannel[M any](conn *Connection, name string) (*BiChannel[M], error) {
	send, recv, err := conn.OpenBi(name)
	if err != nil {
		return nil, err
	}
	return &BiChannel[M]{send: send, recv: recv}, nil
}

// Send frames and writes msg.
func (ch *BiChannel[M]) Send(msg M) error {
	return writeFrame(ch.send, msg)
}

// Recv reads and decodes the next frame.
func (ch *BiChannel[M]) Recv() (M, error) {
	var msg M
	err := readFrame(ch.recv, &msg)
	return msg, err
}

// Close closes both halves of the underlying stream.
func (ch *BiChannel[M]) Close() error {
	sendErr := ch.send.Close()
	recvErr := ch.recv.Close()
	if sendErr != nil {
		return sendErr
	}
	return recvErr
}
