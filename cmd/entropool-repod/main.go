// Command entropool-repod serves a pool repository over gRPC so that
// several entropool invocations (or hosts) can share one store.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"

	"github.com/entropool/entropool/storage"
	"github.com/entropool/entropool/storage/filerepo"
	"github.com/entropool/entropool/storage/grpcrepo"
)

func main() {
	fs := flag.NewFlagSet("entropool-repod", flag.ExitOnError)
	listen := fs.String("listen", "127.0.0.1:7654", "listen address")
	backend := fs.String("backend", "file", "repository backend (file|memory)")
	dir := fs.String("dir", "pools", "pool directory for the file backend")
	_ = fs.Parse(os.Args[1:])

	var repo storage.Repository
	switch *backend {
	case "file":
		r, err := filerepo.New(*dir)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		repo = r
	case "memory":
		repo = storage.NewMemory()
	default:
		fmt.Fprintf(os.Stderr, "unknown backend %q (file|memory)\n", *backend)
		os.Exit(2)
	}

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer lis.Close()

	s := grpc.NewServer()
	grpcrepo.RegisterRepositoryServer(s, &grpcrepo.Server{Repo: repo})

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		s.GracefulStop()
	}()

	fmt.Fprintf(os.Stderr, "entropool-repod listening on %s (backend=%s)\n", lis.Addr().String(), *backend)
	if err := s.Serve(lis); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
