/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package compiler

import "dxeventgen/internal/domain"

// Target instruction spellings. The engine's event-source grammar is fixed
// and whitespace-sensitive; every emitted line is assembled from these.
const (
	tokHeader    = "太閣立志傳５事件原始碼"
	tokChapter   = "章節:"
	tokEvent     = "事件:"
	tokOnce      = "屬性:僅限一次"
	tokTiming    = "發生時機:室內畫面顯示後(%s,%s)"
	tokCondBlock = "發生條件:"
	tokScript    = "腳本:"

	tokNarration = "旁白:[[%s]]"
	tokHeroThink = "自言自語:[[%s]]"
	tokSay       = "對話:(%s,%s)[[%s]]"
	tokRenameSay = "變名對話:(%s,%s,[[%s]],[[%s]])[[%s]]"

	tokChoice    = "選擇:[[%s]](%s)"
	tokChoiceArm = "分歧:(%s)[[%s]]"

	tokGuard  = "條件:(%s)"
	tokElse   = "其他:"
	tokAssign = "代入:(%s,%s)"
	tokAdd    = "加算:(%s,%d)"
	tokSub    = "減算:(%s,%d)"

	tokVar = "變數%d"
)

// Condition operand tokens.
const (
	tokGender  = "性別"
	tokFaction = "勢力"
	tokMoney   = "所持金"
	tokTime    = "時刻"
)

// operandSpec ties an authoring operand to its engine token and typing
// rule: enum operands compare registered identifiers with equality only,
// numeric operands order plain integers.
type operandSpec struct {
	token    string
	category string // enum category, "" for numeric operands
	maxValue int    // upper bound for numeric operands, <0 for none
}

var operands = map[string]operandSpec{
	domain.OperandGender:  {token: tokGender, category: "gender", maxValue: -1},
	domain.OperandFaction: {token: tokFaction, category: "faction", maxValue: -1},
	domain.OperandMoney:   {token: tokMoney, maxValue: -1},
	domain.OperandTime:    {token: tokTime, maxValue: 23},
}

var equalityOps = map[string]bool{"==": true, "!=": true}

var orderingOps = map[string]bool{
	"==": true, "!=": true,
	"<": true, "<=": true, ">": true, ">=": true,
}
