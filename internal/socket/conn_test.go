package socket

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConn() *Conn {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewConn(nil, NewLoop(), logger)
}

// outFrame mirrors the wire shape for assertions on outbound traffic.
type outFrame struct {
	Message string                 `json:"message"`
	Args    []json.RawMessage      `json:"args"`
	ID      string                 `json:"id"`
	Value   map[string]interface{} `json:"value"`
}

func readOut(t *testing.T, c *Conn) outFrame {
	t.Helper()
	select {
	case data := <-c.out:
		var f outFrame
		require.NoError(t, json.Unmarshal(data, &f))
		return f
	default:
		t.Fatal("expected an outbound frame, buffer is empty")
		return outFrame{}
	}
}

func requireNoOut(t *testing.T, c *Conn) {
	t.Helper()
	select {
	case data := <-c.out:
		t.Fatalf("unexpected outbound frame: %s", data)
	default:
	}
}

func TestDispatchAnswersRequest(t *testing.T) {
	c := newTestConn()
	c.On("greet", "owner", func(args Args) interface{} {
		return OKWith(map[string]interface{}{"greeting": "hi " + args.String(0)})
	})

	c.dispatch([]byte(`{"message":"greet","args":["\"there\""],"id":"42"}`))

	f := readOut(t, c)
	assert.Equal(t, "42", f.ID)
	assert.Equal(t, true, f.Value["success"])
	assert.Equal(t, "hi there", f.Value["greeting"])
}

func TestDispatchFireAndForget(t *testing.T) {
	c := newTestConn()
	called := false
	c.On("notify", "owner", func(args Args) interface{} {
		called = true
		return OK()
	})

	c.dispatch([]byte(`{"message":"notify"}`))

	assert.True(t, called)
	// no request id, no response
	requireNoOut(t, c)
}

func TestDispatchUnknownMessage(t *testing.T) {
	c := newTestConn()

	c.dispatch([]byte(`{"message":"nope","id":"1"}`))

	f := readOut(t, c)
	assert.Equal(t, false, f.Value["success"])
	assert.Equal(t, float64(CodeUnknown), f.Value["errorCode"])

	// without a request id the unknown message is silently ignored
	c.dispatch([]byte(`{"message":"nope"}`))
	requireNoOut(t, c)
}

func TestDispatchFirstNonNilResultAnswers(t *testing.T) {
	c := newTestConn()
	c.On("multi", "a", func(args Args) interface{} { return nil })
	c.On("multi", "b", func(args Args) interface{} {
		return OKWith(map[string]interface{}{"from": "b"})
	})
	c.On("multi", "c", func(args Args) interface{} {
		return OKWith(map[string]interface{}{"from": "c"})
	})

	c.dispatch([]byte(`{"message":"multi","id":"1"}`))

	f := readOut(t, c)
	assert.Equal(t, "b", f.Value["from"])
}

func TestDispatchNilResultsDefaultToOK(t *testing.T) {
	c := newTestConn()
	c.On("quiet", "owner", func(args Args) interface{} { return nil })

	c.dispatch([]byte(`{"message":"quiet","id":"1"}`))

	f := readOut(t, c)
	assert.Equal(t, true, f.Value["success"])
}

func TestHandlerPanicIsContained(t *testing.T) {
	c := newTestConn()
	c.On("boom", "owner", func(args Args) interface{} {
		panic("handler bug")
	})
	c.On("fine", "owner", func(args Args) interface{} { return OK() })

	c.dispatch([]byte(`{"message":"boom","id":"1"}`))

	f := readOut(t, c)
	assert.Equal(t, false, f.Value["success"])
	assert.Equal(t, float64(CodeInternal), f.Value["errorCode"])
	assert.NotContains(t, f.Value["errorMessage"], "handler bug",
		"internal panic details never reach the client")

	// the connection stays usable
	c.dispatch([]byte(`{"message":"fine","id":"2"}`))
	assert.Equal(t, true, readOut(t, c).Value["success"])
}

func TestOffRemovesOnlyOwner(t *testing.T) {
	c := newTestConn()
	var calls []string
	c.On("m", "a", func(args Args) interface{} { calls = append(calls, "a"); return nil })
	c.On("m", "b", func(args Args) interface{} { calls = append(calls, "b"); return nil })

	c.Off("m", "a")
	c.dispatch([]byte(`{"message":"m"}`))

	assert.Equal(t, []string{"b"}, calls)
}

func TestDropOwnerUnwindsAllMessages(t *testing.T) {
	c := newTestConn()
	c.On("one", "room", func(args Args) interface{} { return OK() })
	c.On("two", "room", func(args Args) interface{} { return OK() })
	c.On("two", "player", func(args Args) interface{} { return OK() })

	c.DropOwner("room")

	c.dispatch([]byte(`{"message":"one","id":"1"}`))
	assert.Equal(t, float64(CodeUnknown), readOut(t, c).Value["errorCode"])

	c.dispatch([]byte(`{"message":"two","id":"2"}`))
	assert.Equal(t, true, readOut(t, c).Value["success"])
}

func TestEmitEncodesFrame(t *testing.T) {
	c := newTestConn()

	c.Emit("rooms/r/addPlayer", "p1", 3)

	f := readOut(t, c)
	assert.Equal(t, "rooms/r/addPlayer", f.Message)
	require.Len(t, f.Args, 2)
	assert.JSONEq(t, `"p1"`, string(f.Args[0]))
	assert.JSONEq(t, `3`, string(f.Args[1]))
}

func TestEmitWithoutArgsSendsEmptyList(t *testing.T) {
	c := newTestConn()

	c.Emit("tick")

	data := <-c.out
	assert.JSONEq(t, `{"message":"tick","args":[]}`, string(data))
}

func TestEmitDropsWhenBufferFull(t *testing.T) {
	c := newTestConn()
	for i := 0; i < cap(c.out); i++ {
		c.Emit("fill")
	}

	c.Emit("overflow") // must not block

	assert.Len(t, c.out, cap(c.out))
}

func TestDispatchInvalidFrame(t *testing.T) {
	c := newTestConn()

	c.dispatch([]byte(`{not json`))

	requireNoOut(t, c)
}
