package testing

import (
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	serverReadyTimeout = 5 * time.Second
	clientDialTimeout  = 2 * time.Second
)

// StartEmbeddedNATS runs a JetStream-enabled NATS server inside the test process
// and returns it with a connected client.
//
// The server binds a random loopback port and keeps JetStream state under
// t.TempDir(), so parallel tests never share buckets or subjects. Both the
// client and the server are shut down when the test ends. Tests that simulate
// an outage may call Shutdown on the returned server themselves; the client
// then reports connectivity errors to the sinks.
//
// Example:
//
//	func TestKVSink(t *testing.T) {
//	    _, nc := splittertest.StartEmbeddedNATS(t)
//	    store, err := sink.NewKV(t.Context(), nc, sink.KVConfig{Bucket: "experiments"})
//	    require.NoError(t, err)
//	    // ...
//	}
func StartEmbeddedNATS(t testing.TB) (*server.Server, *nats.Conn) {
	t.Helper()

	ns := startServer(t)
	nc := connectClient(t, ns)

	t.Cleanup(func() {
		nc.Close()
		ns.Shutdown()
		ns.WaitForShutdown()
	})

	return ns, nc
}

func startServer(t testing.TB) *server.Server {
	t.Helper()

	ns, err := server.NewServer(&server.Options{
		ServerName: "splitter-test",
		Host:       "127.0.0.1",
		Port:       -1,
		JetStream:  true,
		StoreDir:   t.TempDir(),
		NoLog:      true,
	})
	if err != nil {
		t.Fatalf("create embedded NATS server: %v", err)
	}

	go ns.Start()
	if !ns.ReadyForConnections(serverReadyTimeout) {
		ns.Shutdown()
		t.Fatalf("embedded NATS server not ready after %s", serverReadyTimeout)
	}

	return ns
}

// connectClient dials ns with a small reconnect budget so outage tests fail fast.
func connectClient(t testing.TB, ns *server.Server) *nats.Conn {
	t.Helper()

	nc, err := nats.Connect(ns.ClientURL(),
		nats.Name("splitter-test"),
		nats.Timeout(clientDialTimeout),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(3),
	)
	if err != nil {
		ns.Shutdown()
		t.Fatalf("connect to embedded NATS server: %v", err)
	}

	return nc
}

// CreateJetStreamKV creates a memory-backed KV bucket named bucket.
//
// Use it to hand a pre-built bucket to sink.NewKVFromBucket.
func CreateJetStreamKV(t testing.TB, nc *nats.Conn, bucket string) jetstream.KeyValue {
	t.Helper()

	js, err := jetstream.New(nc)
	if err != nil {
		t.Fatalf("open JetStream: %v", err)
	}

	kv, err := js.CreateKeyValue(t.Context(), jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "splitter test bucket " + bucket,
		Storage:     jetstream.MemoryStorage,
	})
	if err != nil {
		t.Fatalf("create KV bucket %q: %v", bucket, err)
	}

	return kv
}
