package executor

// Target 标识一次账号/区域维度的采集单元
// 值类型，创建后不再修改
type Target struct {
	AccountID   string
	AccountName string
	Region      string
}

// String 返回 account/region 形式的标识，用于日志
func (t Target) String() string {
	return t.AccountID + "/" + t.Region
}
