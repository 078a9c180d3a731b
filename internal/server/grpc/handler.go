package grpc

import (
	"context"

	"github.com/dmitrijs2005/glider/internal/common"
	v1 "github.com/dmitrijs2005/glider/internal/contract/v1"
	"github.com/dmitrijs2005/glider/internal/server/models"
	"github.com/dmitrijs2005/glider/internal/server/services"
	"github.com/dmitrijs2005/glider/internal/server/session"
)

// handler implements v1.VaultServiceServer on top of the services. The
// caller's identity is put into the context by sessionInterceptor.
type handler struct {
	*GRPCServer
}

func (h *handler) Ping(ctx context.Context, req *v1.PingRequest) (*v1.PingResponse, error) {
	return &v1.PingResponse{Status: "OK"}, nil
}

func (h *handler) InsertPassword(ctx context.Context, req *v1.InsertPasswordRequest) (*v1.PasswordIDResponse, error) {
	who, _ := session.FromContext(ctx)

	in := services.InsertInput{Tail: req.Tail, Scopes: req.Scopes, Secret: req.Secret}
	if req.Configuration != nil {
		cfg := configFromWire(*req.Configuration)
		in.Configuration = &cfg
	}

	id, err := h.vault.InsertPassword(ctx, who, in)
	if err != nil {
		return nil, h.fail(ctx, v1.MethodInsertPassword, err)
	}
	return &v1.PasswordIDResponse{PasswordID: id}, nil
}

func (h *handler) GeneratePassword(ctx context.Context, req *v1.GeneratePasswordRequest) (*v1.GeneratePasswordResponse, error) {
	who, _ := session.FromContext(ctx)

	id, secret, err := h.vault.GeneratePassword(ctx, who, req.Tail, req.Scopes, configFromWire(req.Configuration))
	if err != nil {
		return nil, h.fail(ctx, v1.MethodGeneratePassword, err)
	}
	return &v1.GeneratePasswordResponse{PasswordID: id, Secret: secret}, nil
}

func (h *handler) RefreshPassword(ctx context.Context, req *v1.PasswordIDRequest) (*v1.SecretResponse, error) {
	who, _ := session.FromContext(ctx)

	secret, err := h.vault.RefreshPassword(ctx, who, req.PasswordID)
	if err != nil {
		return nil, h.fail(ctx, v1.MethodRefreshPassword, err)
	}
	return &v1.SecretResponse{Secret: secret}, nil
}

func (h *handler) EditPassword(ctx context.Context, req *v1.EditPasswordRequest) (*v1.Empty, error) {
	who, _ := session.FromContext(ctx)

	err := h.vault.EditPassword(ctx, who, req.PasswordID, services.EditInput{
		Tail:   req.Tail,
		Scopes: req.Scopes,
		Secret: req.Secret,
	})
	if err != nil {
		return nil, h.fail(ctx, v1.MethodEditPassword, err)
	}
	return &v1.Empty{}, nil
}

func (h *handler) CopyPassword(ctx context.Context, req *v1.PasswordIDRequest) (*v1.SecretResponse, error) {
	who, _ := session.FromContext(ctx)

	secret, err := h.vault.CopyPassword(ctx, who, req.PasswordID)
	if err != nil {
		return nil, h.fail(ctx, v1.MethodCopyPassword, err)
	}
	return &v1.SecretResponse{Secret: secret}, nil
}

func (h *handler) GetPassword(ctx context.Context, req *v1.PasswordIDRequest) (*v1.GetPasswordResponse, error) {
	who, _ := session.FromContext(ctx)

	pw, err := h.vault.GetPassword(ctx, who, req.PasswordID)
	if err != nil {
		return nil, h.fail(ctx, v1.MethodGetPassword, err)
	}
	return &v1.GetPasswordResponse{Password: passwordToWire(pw)}, nil
}

func (h *handler) ListPasswords(ctx context.Context, req *v1.ListPasswordsRequest) (*v1.ListPasswordsResponse, error) {
	who, _ := session.FromContext(ctx)

	opts := services.ListOptions{
		Keywords:       req.Keywords,
		Page:           req.Page,
		PageSize:       req.PageSize,
		IncludeSecrets: req.IncludeSecrets,
	}
	for _, t := range req.Types {
		typ, err := models.ParsePasswordType(t)
		if err != nil {
			return nil, h.fail(ctx, v1.MethodListPasswords, common.NewFieldError("types", err.Error()))
		}
		opts.Types = append(opts.Types, typ)
	}

	kc, err := h.vault.ListPasswords(ctx, who, opts)
	if err != nil {
		return nil, h.fail(ctx, v1.MethodListPasswords, err)
	}

	resp := &v1.ListPasswordsResponse{
		Passwords: make([]v1.Password, 0, len(kc.Passwords)),
		Page:      kc.Page,
		PageSize:  kc.PageSize,
		Total:     kc.Total,
	}
	for _, pw := range kc.Passwords {
		resp.Passwords = append(resp.Passwords, passwordToWire(pw))
	}
	return resp, nil
}

func (h *handler) DeletePassword(ctx context.Context, req *v1.PasswordIDRequest) (*v1.Empty, error) {
	who, _ := session.FromContext(ctx)

	if err := h.vault.DeletePassword(ctx, who, req.PasswordID); err != nil {
		return nil, h.fail(ctx, v1.MethodDeletePassword, err)
	}
	return &v1.Empty{}, nil
}

func (h *handler) History(ctx context.Context, req *v1.PasswordIDRequest) (*v1.HistoryResponse, error) {
	who, _ := session.FromContext(ctx)

	evs, err := h.vault.History(ctx, who, req.PasswordID)
	if err != nil {
		return nil, h.fail(ctx, v1.MethodHistory, err)
	}
	resp := &v1.HistoryResponse{Events: make([]v1.PasswordEvent, 0, len(evs))}
	for _, ev := range evs {
		resp.Events = append(resp.Events, eventToWire(ev))
	}
	return resp, nil
}

func (h *handler) ListDevices(ctx context.Context, req *v1.ListDevicesRequest) (*v1.ListDevicesResponse, error) {
	who, _ := session.FromContext(ctx)

	devices, err := h.devices.ListDevices(ctx, who)
	if err != nil {
		return nil, h.fail(ctx, v1.MethodListDevices, err)
	}
	resp := &v1.ListDevicesResponse{Devices: make([]v1.Device, 0, len(devices))}
	for _, d := range devices {
		resp.Devices = append(resp.Devices, deviceToWire(d))
	}
	return resp, nil
}

func (h *handler) DisconnectDevice(ctx context.Context, req *v1.DisconnectDeviceRequest) (*v1.Empty, error) {
	who, _ := session.FromContext(ctx)

	if err := h.devices.DisconnectDevice(ctx, who, req.DeviceID); err != nil {
		return nil, h.fail(ctx, v1.MethodDisconnectDevice, err)
	}
	return &v1.Empty{}, nil
}

func (h *handler) ArchiveVault(ctx context.Context, req *v1.ArchiveVaultRequest) (*v1.ArchiveVaultResponse, error) {
	who, _ := session.FromContext(ctx)

	a, err := h.archive.ArchiveVault(ctx, who, req.Passphrase)
	if err != nil {
		return nil, h.fail(ctx, v1.MethodArchiveVault, err)
	}
	return &v1.ArchiveVaultResponse{Key: a.Key, URL: a.URL, ExpiresAt: a.ExpiresAt}, nil
}
