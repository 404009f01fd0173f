package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dysodeng/cosfs"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var errFailed = errors.New("操作失败")

func check(ok bool, err error) error {
	if err != nil {
		return err
	}
	if !ok {
		return errFailed
	}
	return nil
}

// progress 为读取过程添加进度条
func (a *app) progress(cmd *cobra.Command, r io.Reader, size int64, desc string) io.Reader {
	if a.noProgress {
		return r
	}
	bar := progressbar.NewOptions64(size,
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionShowBytes(true),
		progressbar.OptionClearOnFinish(),
	)
	return io.TeeReader(r, bar)
}

func newPutCmd(a *app) *cobra.Command {
	var (
		overwrite   bool
		visibility  string
		contentType string
		bizAttr     string
	)

	cmd := &cobra.Command{
		Use:   "put <本地文件> <远程路径>",
		Short: "上传文件",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			info, err := f.Stat()
			if err != nil {
				return err
			}

			opts := []cosfs.Option{cosfs.WithBizAttr(bizAttr)}
			if contentType != "" {
				opts = append(opts, cosfs.WithContentType(contentType))
			}
			if visibility != "" {
				opts = append(opts, cosfs.WithVisibility(cosfs.Visibility(visibility)))
			}

			r := a.progress(cmd, f, info.Size(), "上传 "+args[1])

			var result cosfs.Result
			if overwrite {
				result, err = a.fs.UpdateStream(cmd.Context(), args[1], r, opts...)
			} else {
				result, err = a.fs.WriteStream(cmd.Context(), args[1], r, opts...)
			}
			if err = check(result.OK, err); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.fs.URL(args[1]))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&overwrite, "overwrite", "f", false, "覆盖已存在的文件")
	cmd.Flags().StringVar(&visibility, "visibility", "", "访问权限：public / private")
	cmd.Flags().StringVar(&contentType, "content-type", "", "Content-Type，默认自动识别")
	cmd.Flags().StringVar(&bizAttr, "biz-attr", "", "业务属性")
	return cmd
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <远程路径> [本地文件]",
		Short: "下载文件，未指定本地文件时输出到标准输出",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			size, _, err := a.fs.GetSize(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			body, err := a.fs.ReadStream(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer body.Close()

			if len(args) == 1 {
				_, err = io.Copy(cmd.OutOrStdout(), body)
				return err
			}

			out, err := os.Create(args[1])
			if err != nil {
				return err
			}
			if _, err = io.Copy(out, a.progress(cmd, body, size, "下载 "+args[0])); err != nil {
				_ = out.Close()
				return err
			}
			return out.Close()
		},
	}
}

func newLsCmd(a *app) *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:   "ls [目录]",
		Short: "列出目录内容",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) > 0 {
				dir = args[0]
			}
			infos, ok, err := a.fs.ListContents(cmd.Context(), dir, recursive)
			if err = check(ok, err); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, info := range infos {
				if info.IsDir() {
					fmt.Fprintf(w, "%-10s %-14s %s/\n", "-", humanize.Time(info.ModTime()), info.Path)
					continue
				}
				fmt.Fprintf(w, "%-10s %-14s %s\n", humanize.Bytes(uint64(info.Size)), humanize.Time(info.ModTime()), info.Path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "递归列出子目录")
	return cmd
}

func newStatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stat <路径>",
		Short: "查看文件属性",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w := cmd.OutOrStdout()

			if size, ok, err := a.fs.GetSize(ctx, args[0]); err != nil {
				return err
			} else if ok {
				fmt.Fprintf(w, "大小:     %s (%d)\n", humanize.Bytes(uint64(size)), size)
			}
			if mt, ok, err := a.fs.GetMimetype(ctx, args[0]); err != nil {
				return err
			} else if ok {
				fmt.Fprintf(w, "类型:     %s\n", mt)
			}
			if ts, ok, err := a.fs.GetTimestamp(ctx, args[0]); err != nil {
				return err
			} else if ok {
				t := time.Unix(ts, 0)
				fmt.Fprintf(w, "创建时间: %s (%s)\n", t.Format(time.RFC3339), humanize.Time(t))
			}
			visibility, ok, err := a.fs.GetVisibility(ctx, args[0])
			if err != nil {
				return err
			}
			if !ok {
				visibility = "继承存储桶"
			}
			fmt.Fprintf(w, "权限:     %s\n", visibility)
			return nil
		},
	}
}

func newRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <路径>",
		Short: "删除文件",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return check(a.fs.Delete(cmd.Context(), args[0]))
		},
	}
}

func newRmdirCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rmdir <目录>",
		Short: "删除空目录",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return check(a.fs.DeleteDir(cmd.Context(), args[0]))
		},
	}
}

func newMkdirCmd(a *app) *cobra.Command {
	var bizAttr string

	cmd := &cobra.Command{
		Use:   "mkdir <目录>",
		Short: "创建目录",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.fs.CreateDir(cmd.Context(), args[0], cosfs.WithBizAttr(bizAttr))
			return check(r.OK, err)
		},
	}

	cmd.Flags().StringVar(&bizAttr, "biz-attr", "", "业务属性")
	return cmd
}

func newMvCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mv <源路径> <目标路径>",
		Short: "移动文件，目标存在时覆盖",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return check(a.fs.Rename(cmd.Context(), args[0], args[1]))
		},
	}
}

func newCpCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cp <源路径> <目标路径>",
		Short: "复制文件，目标存在时覆盖",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return check(a.fs.Copy(cmd.Context(), args[0], args[1]))
		},
	}
}

func newVisibilityCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "visibility <路径> [public|private]",
		Short: "查看或设置访问权限",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 {
				v := cosfs.Visibility(strings.ToLower(args[1]))
				if v != cosfs.Public && v != cosfs.Private {
					return fmt.Errorf("访问权限 %q 无效", args[1])
				}
				return check(a.fs.SetVisibility(cmd.Context(), args[0], v))
			}

			v, ok, err := a.fs.GetVisibility(cmd.Context(), args[0])
			if err = check(ok, err); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
}

func newURLCmd(a *app) *cobra.Command {
	var (
		sign    bool
		expires time.Duration
	)

	cmd := &cobra.Command{
		Use:   "url <路径>",
		Short: "输出文件访问地址",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u := a.fs.URL(args[0])
			if sign {
				var err error
				if u, err = a.fs.SignURL(cmd.Context(), args[0], expires); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), u)
			return nil
		},
	}

	cmd.Flags().BoolVar(&sign, "sign", false, "生成带签名的地址")
	cmd.Flags().DurationVar(&expires, "expires", 2*time.Hour, "签名有效期")
	return cmd
}

func newFetchCmd(a *app) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "fetch <远程地址> <目录>",
		Short: "抓取远程文件并保存",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				path string
				ok   bool
				err  error
			)
			if name != "" {
				path, ok, err = cosfs.PutRemoteFileAs(cmd.Context(), a.fs, nil, args[1], args[0], filepath.Base(name))
			} else {
				path, ok, err = cosfs.PutRemoteFile(cmd.Context(), a.fs, nil, args[1], args[0])
			}
			if err = check(ok, err); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "保存的文件名，默认由地址生成")
	return cmd
}
