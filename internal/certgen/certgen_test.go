package certgen

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestServerCertificate_VerifiesAgainstCA(t *testing.T) {
	ca, err := NewAuthority("Test CA", time.Hour)
	if err != nil {
		t.Fatalf("NewAuthority: %v", err)
	}
	certPEM, keyPEM, err := ca.ServerCertificate([]string{"localhost", "127.0.0.1"}, time.Hour)
	if err != nil {
		t.Fatalf("ServerCertificate: %v", err)
	}
	if _, err := tls.X509KeyPair(certPEM, keyPEM); err != nil {
		t.Fatalf("key pair does not match: %v", err)
	}

	block, _ := pem.Decode(certPEM)
	if block == nil {
		t.Fatal("certificate is not PEM")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		t.Fatal(err)
	}
	pool := x509.NewCertPool()
	pool.AddCert(ca.Cert)
	for _, host := range []string{"localhost", "127.0.0.1"} {
		if _, err := cert.Verify(x509.VerifyOptions{DNSName: host, Roots: pool}); err != nil {
			t.Errorf("verify for %s: %v", host, err)
		}
	}
	if len(cert.IPAddresses) != 1 || len(cert.DNSNames) != 1 {
		t.Errorf("SANs = %v / %v; want one IP and one DNS name", cert.IPAddresses, cert.DNSNames)
	}
}

func TestServerCertificate_NoHosts(t *testing.T) {
	ca, err := NewAuthority("Test CA", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := ca.ServerCertificate(nil, time.Hour); err == nil {
		t.Error("expected error for empty host list")
	}
}

func TestWriteBundle(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "certs")
	if err := WriteBundle(dir, []string{"localhost"}, time.Hour); err != nil {
		t.Fatalf("WriteBundle: %v", err)
	}
	if _, err := tls.LoadX509KeyPair(filepath.Join(dir, ServerCertFile), filepath.Join(dir, ServerKeyFile)); err != nil {
		t.Errorf("load server pair: %v", err)
	}
	info, err := os.Stat(filepath.Join(dir, ServerKeyFile))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("key mode = %v; want 0600", info.Mode().Perm())
	}
	caPEM, err := os.ReadFile(filepath.Join(dir, CACertFile))
	if err != nil {
		t.Fatal(err)
	}
	if !x509.NewCertPool().AppendCertsFromPEM(caPEM) {
		t.Error("ca.crt is not a valid PEM certificate")
	}
}
