package recovery

import (
	"context"
	"errors"
	"fmt"

	"wxkey/datfile"
	"wxkey/keyerr"
	"wxkey/process"
	"wxkey/search"
	"wxkey/status"
)

// ImageKeyResult is the outcome of AutoGetImageKey. AesKey is set only on success and is
// always 16 characters long.
type ImageKeyResult struct {
	Success bool   `json:"success"`
	XorKey  *uint8 `json:"xorKey,omitempty"`
	AesKey  string `json:"aesKey,omitempty"`
	Error   string `json:"error,omitempty"`
	Kind    string `json:"kind,omitempty"`
}

func imageFailure(report status.Func, err error) ImageKeyResult {
	msg := keyerr.Message(err)
	report.Report(msg, status.Error)
	return ImageKeyResult{Error: msg, Kind: keyerr.KindOf(err).String()}
}

// AutoGetImageKey derives the XOR key from the account's template files and scans the
// running client's memory for the AES key. accountDir overrides the configured and
// discovered account directory when non-empty.
func (e *Engine) AutoGetImageKey(ctx context.Context, accountDir string, report status.Func) ImageKeyResult {
	cfg := e.Config

	if err := e.acquire(); err != nil {
		return imageFailure(report, err)
	}
	defer e.release()

	if e.Preflight != nil {
		if err := e.Preflight(); err != nil {
			return imageFailure(report, err)
		}
	}

	path, _, err := e.Locator.FindInstallPath()
	if err != nil {
		return imageFailure(report, keyerr.Discovery(MsgInstallNotFound, err))
	}
	e.log.Debugln("install path", path)

	if accountDir == "" {
		accountDir = cfg.Image.AccountDir
	}
	report.Report("正在定位账号数据目录...", status.Info)
	dir, err := datfile.AutoLocate(accountDir, cfg.Image.AccountRoot)
	if err != nil {
		return imageFailure(report, keyerr.Discovery(MsgAccountNotFound, err))
	}
	report.Report("账号目录: "+dir, status.Info)

	templates, err := datfile.NewTemplateLocator(cfg.Image.TemplateSuffix, cfg.Image.MaxTemplateFiles, cfg.Image.KeepTemplateFiles).Find(dir)
	if err != nil {
		return imageFailure(report, keyerr.Discovery(MsgNoTemplates, err))
	}
	report.Report(fmt.Sprintf("找到 %d 个模板文件", len(templates)), status.Info)

	xorKey, err := datfile.DeriveXorKey(templates)
	if err != nil {
		return imageFailure(report, keyerr.Discovery(MsgNoXorKey, err))
	}
	report.Report(fmt.Sprintf("XOR 密钥: 0x%02X", xorKey), status.Success)

	block, err := datfile.ExtractCiphertext(templates)
	if err != nil {
		return imageFailure(report, keyerr.Discovery(MsgNoCiphertext, err))
	}

	pid, err := e.Locator.FindPID(cfg.Target.ImageNames...)
	if err != nil {
		return imageFailure(report, keyerr.Discovery(MsgProcessNotFound, err))
	}

	report.Report(fmt.Sprintf("正在扫描微信进程内存 (PID: %d)...", pid), status.Info)
	aesKey, stats, err := search.FindAESKey(ctx, e.OpenProcess, pid, block,
		search.WithMaxRegionSize(process.ProcessMemorySize(cfg.Scan.MaxRegionSize)),
		search.WithProgressEvery(cfg.Scan.ProgressEvery),
		search.WithProgress(func(scanned, total int) {
			report.Report(fmt.Sprintf("已扫描 %d/%d 个内存区域", scanned, total), status.Info)
		}),
	)
	switch {
	case errors.Is(err, process.ErrProcessNotOpen):
		return imageFailure(report, keyerr.Permission(MsgOpenProcess, err))
	case err != nil:
		return imageFailure(report, err)
	case aesKey == "":
		e.log.Infoln("no key:", stats)
		return imageFailure(report, keyerr.Discovery(MsgAesKeyNotFound, nil))
	}

	report.Report("图片密钥获取成功", status.Success)
	return ImageKeyResult{Success: true, XorKey: &xorKey, AesKey: aesKey}
}
