// emojcd serves compile requests over gRPC. The service is described by
// compile.proto, parsed at startup; requests and responses are dynamic
// messages so the daemon needs no generated code.
package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"

	"github.com/funvibe/emojc/internal/bundle"
	"github.com/funvibe/emojc/pkg/cli"
)

//go:embed compile.proto
var compileProto string

const serviceName = "emojc.Compiler"

func main() {
	addr := flag.String("addr", "127.0.0.1:7971", "listen address")
	flag.Parse()

	sd, err := loadServiceDescriptor()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	server := grpc.NewServer()
	registerCompiler(server, sd)

	lis, err := net.Listen("tcp", *addr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		server.GracefulStop()
	}()

	fmt.Fprintf(os.Stderr, "emojcd listening on %s\n", *addr)
	if err := server.Serve(lis); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadServiceDescriptor parses the embedded proto definition.
func loadServiceDescriptor() (*desc.ServiceDescriptor, error) {
	parser := protoparse.Parser{
		Accessor: func(filename string) (io.ReadCloser, error) {
			if filename == "compile.proto" {
				return io.NopCloser(strings.NewReader(compileProto)), nil
			}
			return os.Open(filename)
		},
	}
	fds, err := parser.ParseFiles("compile.proto")
	if err != nil {
		return nil, fmt.Errorf("parsing compile.proto: %w", err)
	}
	sd := fds[0].FindService(serviceName)
	if sd == nil {
		return nil, fmt.Errorf("service %s not found in compile.proto", serviceName)
	}
	return sd, nil
}

// registerCompiler constructs a ServiceDesc for the dynamic service and
// registers the handler.
func registerCompiler(server *grpc.Server, sd *desc.ServiceDescriptor) {
	handler := &compileHandler{sd: sd}
	gsd := &grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*interface{})(nil),
		Metadata:    sd.GetFile().GetName(),
	}
	for _, method := range sd.GetMethods() {
		if method.IsClientStreaming() || method.IsServerStreaming() {
			continue
		}
		md := method
		gsd.Methods = append(gsd.Methods, grpc.MethodDesc{
			MethodName: md.GetName(),
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
				h := srv.(*compileHandler)
				return h.handleUnary(ctx, md, dec)
			},
		})
	}
	server.RegisterService(gsd, handler)
}

type compileHandler struct {
	sd *desc.ServiceDescriptor
}

func (h *compileHandler) handleUnary(_ context.Context, md *desc.MethodDescriptor, dec func(interface{}) error) (interface{}, error) {
	in := dynamic.NewMessage(md.GetInputType())
	if err := dec(in); err != nil {
		return nil, err
	}

	opts := cli.Options{
		SearchPath: in.GetFieldByName("search_path").(string),
		Package:    in.GetFieldByName("package").(string),
		OutputPath: in.GetFieldByName("output_path").(string),
	}
	result := cli.Compile(opts)

	out := dynamic.NewMessage(md.GetOutputType())
	out.SetFieldByName("success", !result.HadError())

	diagType := md.GetOutputType().FindFieldByName("diagnostics").GetMessageType()
	for _, w := range result.Warnings {
		d := dynamic.NewMessage(diagType)
		d.SetFieldByName("severity", "warning")
		d.SetFieldByName("code", string(w.Code))
		d.SetFieldByName("file", w.Position.File)
		d.SetFieldByName("line", int32(w.Position.Line))
		d.SetFieldByName("column", int32(w.Position.Column))
		d.SetFieldByName("message", w.Message)
		out.AddRepeatedFieldByName("diagnostics", d)
	}
	for _, e := range result.Errors {
		d := dynamic.NewMessage(diagType)
		d.SetFieldByName("severity", "error")
		d.SetFieldByName("code", string(e.Code))
		d.SetFieldByName("file", e.Position.File)
		d.SetFieldByName("line", int32(e.Position.Line))
		d.SetFieldByName("column", int32(e.Position.Column))
		d.SetFieldByName("message", e.Message)
		out.AddRepeatedFieldByName("diagnostics", d)
	}

	if !result.HadError() && result.OutputPath != "" {
		if b, err := bundle.Read(result.OutputPath); err == nil {
			out.SetFieldByName("build_id", b.BuildID)
		}
	}
	return out, nil
}
